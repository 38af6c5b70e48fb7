package domain

import "time"

// Comment is one entry of a ticket's thread. It belongs to exactly one ticket.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  *int64
	Content   string
	CreatedAt time.Time
}

func (c Comment) clone() Comment {
	if c.AuthorID != nil {
		author := *c.AuthorID
		c.AuthorID = &author
	}
	return c
}
