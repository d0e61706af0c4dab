package manager

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/message"
)

// Refresher re-fetches the host's own data after a record changed.
type Refresher interface {
	Refresh(ctx context.Context, t Type) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context, t Type) error

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context, t Type) error {
	return f(ctx, t)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Options carries the optional capabilities of a Controller.
type Options struct {
	// Refresher is used after a successful change. When nil the caller is
	// told to reload the page instead.
	Refresher Refresher
	Logger    *slog.Logger
	Printer   *message.Printer
}

// Controller drives the manager modal: open, render, edit, submit, delete, close.
type Controller struct {
	client    *Client
	refresher Refresher
	logger    *slog.Logger
	printer   *message.Printer
	validator *validator.Validate
}

// NewController wires a controller to the upstream client.
func NewController(client *Client, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	printer := opts.Printer
	if printer == nil {
		printer = NewPrinter("en")
	}
	return &Controller{
		client:    client,
		refresher: opts.Refresher,
		logger:    logger,
		printer:   printer,
		validator: validator.New(),
	}
}

// Printer exposes the controller's message printer to the rendering layer.
func (c *Controller) Printer() *message.Printer {
	return c.printer
}

// Open builds a fresh session. A dataset that cannot be decoded yields a usable
// session with no records together with a *DecodeError.
func (c *Controller) Open(in Input, t Type, title string, page Page) (*Session, error) {
	records, err := Decode(in)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Kind == DecodeEmpty {
			c.logger.Debug("manager opened without dataset", slog.String("type", string(t)))
		} else {
			c.logger.Warn("decode manager dataset", slog.String("type", string(t)), slog.Any("error", err))
		}
	}

	inventory := page.Inventory()
	sess := &Session{
		Records:   records,
		Type:      t,
		Endpoint:  SaveEndpoint(t, inventory),
		Inventory: inventory,
		Title:     title,
		Form: Form{
			Placeholder: c.printer.Sprintf(msgPlaceholder, title),
		},
		Visible: true,
	}
	return sess, err
}

// EditItem loads a record into the form so the next Submit updates it.
func (c *Controller) EditItem(sess *Session, id int64, name string) {
	sess.Form.ID = strconv.FormatInt(id, 10)
	sess.Form.Name = name
	sess.Form.Focus = "name"
}

type submitForm struct {
	Name string `validate:"required"`
}

// Submit creates or updates a record from the posted form values.
func (c *Controller) Submit(ctx context.Context, sess *Session, form Form) (Outcome, error) {
	sess.Form.ID = strings.TrimSpace(form.ID)
	sess.Form.Name = form.Name
	sess.Form.Focus = ""

	name := strings.TrimSpace(form.Name)
	if err := c.validator.Struct(submitForm{Name: name}); err != nil {
		return Outcome{Notification: c.errorNote(msgNameRequired)}, ErrNameRequired
	}

	fields := []Field{{Key: "name", Value: name}}
	if sess.Form.ID != "" {
		fields = append(fields, Field{Key: IDField(sess.Type, sess.Inventory), Value: sess.Form.ID})
	}
	if sess.Inventory {
		fields = append(fields, Field{Key: "type", Value: string(sess.Type)})
	}

	if err := c.client.Save(ctx, sess.Endpoint, fields); err != nil {
		c.logger.Warn("manager save failed", slog.String("endpoint", sess.Endpoint), slog.Any("error", err))
		return Outcome{Notification: c.failureNote(err, msgSaveFailed)}, err
	}

	return c.afterChange(ctx, sess, &Notification{
		Title:    c.printer.Sprintf(msgSaved),
		Icon:     IconSuccess,
		Toast:    true,
		Position: "top-end",
		TimerMS:  1500,
	})
}

// DeleteItem removes a record once the user confirmed it.
func (c *Controller) DeleteItem(ctx context.Context, sess *Session, id int64, confirmer Confirmer) (Outcome, error) {
	if confirmer == nil || !confirmer.Confirm(ctx, c.printer.Sprintf(msgConfirmDelete)) {
		return Outcome{}, nil
	}

	endpoint := DeleteEndpoint(sess.Type, sess.Inventory, id)
	if err := c.client.Delete(ctx, endpoint); err != nil {
		c.logger.Warn("manager delete failed", slog.String("endpoint", endpoint), slog.Any("error", err))
		return Outcome{Notification: c.failureNote(err, msgDeleteFailed)}, err
	}
	return c.afterChange(ctx, sess, nil)
}

// ConfirmPrompt is the question shown before a delete.
func (c *Controller) ConfirmPrompt() string {
	return c.printer.Sprintf(msgConfirmDelete)
}

// Close hides the modal. The session is kept until the next Open.
func (c *Controller) Close(sess *Session) {
	sess.Visible = false
}

func (c *Controller) afterChange(ctx context.Context, sess *Session, note *Notification) (Outcome, error) {
	if c.refresher == nil {
		return Outcome{Reload: true}, nil
	}
	if err := c.refresher.Refresh(ctx, sess.Type); err != nil {
		if errors.Is(err, ErrRefreshUnsupported) {
			return Outcome{Reload: true}, nil
		}
		c.logger.Warn("manager refresh failed", slog.String("type", string(sess.Type)), slog.Any("error", err))
		return Outcome{Notification: c.errorNote(msgRefreshFailed)}, err
	}
	c.Close(sess)
	return Outcome{Closed: true, Notification: note}, nil
}

func (c *Controller) failureNote(err error, fallback string) *Notification {
	if errors.Is(err, ErrUpstreamUnavailable) {
		return c.errorNote(msgConnection)
	}
	return c.errorNote(fallback)
}

func (c *Controller) errorNote(key string) *Notification {
	return &Notification{
		Title: c.printer.Sprintf(msgErrorTitle),
		Text:  c.printer.Sprintf(key),
		Icon:  IconError,
	}
}
