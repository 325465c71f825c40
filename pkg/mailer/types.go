package mailer

import "fmt"

// Tags are provider-side labels. Presence-only tags use struct{}{} values.
type Tags map[string]any

// Address formats a display name and an address as "Name <email>".
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a composed message ready to be handed to a Sender.
type Email struct {
	Headers map[string]string
	Tags    Tags
	Subject string
	HTML    string
	Text    string
	From    string // empty means the provider's default sender
	ReplyTo string
	To      []string
	CC      []string
	BCC     []string
}

// WithFrom returns a shallow copy of e sent from the given address.
func (e *Email) WithFrom(from string) *Email {
	cp := *e
	cp.From = from
	return &cp
}

func (e *Email) validate() error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	if e.Subject == "" {
		return ErrNoSubject
	}
	if e.HTML == "" && e.Text == "" {
		return ErrNoContent
	}
	return nil
}
