package rewards

// Collection is an immutable bundle of reward actions plus display metadata.
// Instances are shared read-only between concurrent evaluations;
// reconfiguration swaps whole tables rather than mutating collections.
type Collection struct {
	Priority    int
	Category    string
	Lore        []string
	RedeemSound string
	DisplayItem string // empty means "resolve from the category template"
	Actions     []Action
}

func (c Collection) IsEmpty() bool { return len(c.Actions) == 0 }

func (c Collection) Count() int { return len(c.Actions) }

// Display returns the explicit display item, falling back to the category
// template lookup supplied by the caller.
func (c Collection) Display(categoryTemplate func(category string) string) string {
	if c.DisplayItem != "" {
		return c.DisplayItem
	}
	if categoryTemplate == nil {
		return ""
	}
	return categoryTemplate(c.Category)
}
