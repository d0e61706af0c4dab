package manager

// Badge shows how many dependent items a record has.
type Badge struct {
	Count  int
	Label  string
	Active bool
}

// Row is one rendered record with the values its actions are bound to.
type Row struct {
	ID    int64
	Name  string
	Badge *Badge
}

// List is the rendered body of the modal table.
type List struct {
	Empty     bool
	EmptyText string
	Rows      []Row
}

// Labels are the localized captions of the modal controls.
type Labels struct {
	Save    string
	Edit    string
	Delete  string
	Confirm string
	Cancel  string
	Close   string
}

// Labels returns the control captions in the controller's locale.
func (c *Controller) Labels() Labels {
	return Labels{
		Save:    c.printer.Sprintf(msgSave),
		Edit:    c.printer.Sprintf(msgEdit),
		Delete:  c.printer.Sprintf(msgDelete),
		Confirm: c.printer.Sprintf(msgConfirm),
		Cancel:  c.printer.Sprintf(msgCancel),
		Close:   c.printer.Sprintf(msgClose),
	}
}

// Render builds the table rows in record order. An empty session renders a
// single placeholder row.
func (c *Controller) Render(sess *Session) List {
	if sess.Records == nil {
		sess.Records = []Record{}
	}
	if len(sess.Records) == 0 {
		return List{Empty: true, EmptyText: c.printer.Sprintf(msgEmptyList)}
	}

	rows := make([]Row, 0, len(sess.Records))
	for _, rec := range sess.Records {
		row := Row{ID: rec.ID, Name: rec.Name}
		if rec.ItemCount != nil {
			count := *rec.ItemCount
			row.Badge = &Badge{
				Count:  count,
				Label:  c.printer.Sprintf(msgItemCount, count),
				Active: count > 0,
			}
		}
		rows = append(rows, row)
	}
	return List{Rows: rows}
}
