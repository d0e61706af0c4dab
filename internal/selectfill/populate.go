// Package selectfill builds the options of record-backed select inputs.
package selectfill

import (
	"strconv"

	"golang.org/x/text/message"

	"github.com/odyssey-erp/auxmanager/internal/manager"
)

// PlaceholderLabel is the label of the empty leading option and its message key.
const PlaceholderLabel = "Select..."

// Option is a single <option> of a select.
type Option struct {
	Value string
	Label string
}

// Select is the rendered content of a select element.
type Select struct {
	ID      string
	Options []Option
}

// Populate resets the select to its placeholder and appends one option per
// record. Anything that is not a record list leaves only the placeholder. A nil
// printer keeps the English placeholder.
func Populate(p *message.Printer, selectID string, records any) Select {
	placeholder := PlaceholderLabel
	if p != nil {
		placeholder = p.Sprintf(PlaceholderLabel)
	}
	sel := Select{
		ID:      selectID,
		Options: []Option{{Value: "", Label: placeholder}},
	}

	var list []manager.Record
	switch v := records.(type) {
	case []manager.Record:
		list = v
	case manager.Array:
		list = v
	default:
		return sel
	}

	for _, rec := range list {
		label := rec.Name
		if rec.Unit != "" {
			label += " (" + rec.Unit + ")"
		}
		sel.Options = append(sel.Options, Option{
			Value: strconv.FormatInt(rec.ID, 10),
			Label: label,
		})
	}
	return sel
}
