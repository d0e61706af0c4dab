package manager

import (
	"strconv"
	"strings"
)

const (
	inventoryAuxSave  = "/admin/inventory/aux/save"
	menuCategorySave  = "/admin/menu/category/save"
	inventoryAuxBase  = "/admin/inventory/aux/"
	menuCategoryBase  = "/admin/menu/category/"
	inventoryPathMark = "inventory"
)

// Page is the path of the page hosting the modal.
type Page string

// Inventory reports whether the page uses the inventory endpoint conventions.
func (p Page) Inventory() bool {
	return strings.Contains(string(p), inventoryPathMark)
}

// SaveEndpoint returns the path records of type t are posted to.
func SaveEndpoint(t Type, inventory bool) string {
	if t == TypeCategory && !inventory {
		return menuCategorySave
	}
	return inventoryAuxSave
}

// DeleteEndpoint returns the path a record is deleted at.
func DeleteEndpoint(t Type, inventory bool, id int64) string {
	sid := strconv.FormatInt(id, 10)
	switch {
	case t == TypeCategory && inventory:
		return inventoryAuxBase + "category/" + sid
	case t == TypeCategory:
		return menuCategoryBase + sid
	default:
		return inventoryAuxBase + "unit/" + sid
	}
}

// IDField names the form field carrying the id of an updated record.
// The menu category endpoint expects cat_id.
func IDField(t Type, inventory bool) string {
	if t == TypeCategory && !inventory {
		return "cat_id"
	}
	return "id"
}
