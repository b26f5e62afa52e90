package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/changelog/internal/core"
)

// MenuItem is one entry of a menu. An item has a submenu, an action, or
// neither (a label).
type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func(m *Model) tea.Cmd
}

// Menu is a node of the menu tree.
type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

// linkParents sets parent pointers and points every "Back" item at the
// enclosing menu.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(defs []core.TableDefinition) *Menu {
	browse := &Menu{Title: "Tables"}
	exports := &Menu{Title: "Export CSV"}
	for _, def := range defs {
		key := def.Key
		browse.Items = append(browse.Items, MenuItem{
			Label:  def.Label,
			Action: func(m *Model) tea.Cmd { return m.openTable(key) },
		})
		if def.IncludeExport {
			exports.Items = append(exports.Items, MenuItem{
				Label:  def.Label,
				Action: func(m *Model) tea.Cmd { return m.exportTable(key) },
			})
		}
	}
	if len(exports.Items) == 0 {
		exports.Items = append(exports.Items, MenuItem{Label: "No exportable tables"})
	}
	browse.Items = append(browse.Items, MenuItem{Label: "Back"})
	exports.Items = append(exports.Items, MenuItem{Label: "Back"})

	root := &Menu{
		Title: "Changelog",
		Items: []MenuItem{
			{Label: "Tables ->", Submenu: browse},
			{Label: "Export ->", Submenu: exports},
			{Label: "Notifications", Action: func(m *Model) tea.Cmd {
				m.mode = modeNotifications
				m.cursor = 0
				return nil
			}},
			{Label: "Clear filters", Action: func(m *Model) tea.Cmd { return m.clearFilters() }},
			{Label: "Quit", Action: func(m *Model) tea.Cmd { return tea.Quit }},
		},
	}

	linkParents(root, nil)

	return root
}
