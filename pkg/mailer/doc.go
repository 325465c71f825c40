// Package mailer composes and sends transactional email.
//
// Composition and delivery are separate steps. A Renderer turns a markdown
// template with YAML frontmatter into an HTML body and a plain-text body; a
// Sender hands the finished Email to a provider. Mailer ties the two together:
//
//	sender := resend.New(resend.Config{APIKey: os.Getenv("RESEND_API_KEY")})
//	m := mailer.New(sender, mailer.NewRenderer(templates.FS), mailer.Config{})
//
//	email, err := m.Compose(mailer.SendParams{
//		To:       "owner@example.com",
//		Template: "contact.md",
//		Data:     submission,
//		ReplyTo:  submission.Email,
//	})
//	if err != nil {
//		return err
//	}
//	err = m.SendRaw(ctx, email)
//
// Composing once and sending the same Email several times is how callers retry
// a delivery with different sender identities without rendering again.
//
// # Templates
//
//	---
//	Subject: New message from {{.Name}}
//	---
//	Name: {{md .Name}}
//
//	Message:
//	{{md .Message}}
//
// The frontmatter Subject is itself a text/template. The plain-text body is the
// executed template before HTML conversion, so a template written as plain text
// produces exactly that text. Values passed through md appear unchanged in the
// text body and are escaped in the markdown source, so visitor input can not add
// headings, links or emphasis to the HTML body. Raw HTML is never rendered, and
// the converted HTML is passed through sanitizer.HTML before the layout wraps it.
//
// # Errors
//
//   - ErrNoRecipient, ErrNoSubject, ErrNoContent: the Email is incomplete
//   - ErrTemplateNotFound, ErrLayoutNotFound: missing files in the template FS
//   - ErrInvalidFrontmatter, ErrRenderFailed: the template could not be rendered
//   - ErrSendFailed: the Sender returned an error (the cause is joined)
package mailer
