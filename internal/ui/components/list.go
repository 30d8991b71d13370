package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/emoji"
)

// ListItem represents an item in a list
type ListItem struct {
	ID          string
	Title       string
	Description string
	Status      string
	Icon        string
}

// List represents a navigable list component
type List struct {
	Title         string
	Items         []ListItem
	Selected      int
	Focused       bool
	Width         int
	Height        int
	ShowNumbers   bool
	ShowIcons     bool
	EmptyText     string
	searchQuery   string
	filteredItems []int // Indices of filtered items
}

// NewList creates a new list component
func NewList(title string, width, height int) *List {
	return &List{
		Title:       title,
		Width:       width,
		Height:      height,
		ShowNumbers: true,
		ShowIcons:   true,
		EmptyText:   "Nothing here yet",
	}
}

// SetItems replaces all items. The selection stays on the same ID when it
// is still present and is clamped otherwise.
func (l *List) SetItems(items []ListItem) {
	previous := ""
	if item := l.GetSelectedItem(); item != nil {
		previous = item.ID
	}

	l.Items = items
	l.updateFilter()

	l.Selected = 0
	for i, idx := range l.filteredItems {
		if previous != "" && l.Items[idx].ID == previous {
			l.Selected = i
			return
		}
	}
}

// SetFocused sets the focus state of the list
func (l *List) SetFocused(focused bool) {
	l.Focused = focused
}

// Len returns the number of visible items
func (l *List) Len() int {
	return len(l.filteredItems)
}

// GetSelectedItem returns the currently selected item
func (l *List) GetSelectedItem() *ListItem {
	if len(l.filteredItems) == 0 || l.Selected >= len(l.filteredItems) {
		return nil
	}
	index := l.filteredItems[l.Selected]
	if index >= len(l.Items) {
		return nil
	}
	return &l.Items[index]
}

// MoveUp moves selection up
func (l *List) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
	}
}

// MoveDown moves selection down
func (l *List) MoveDown() {
	if l.Selected < len(l.filteredItems)-1 {
		l.Selected++
	}
}

// SetSearch sets the search query and filters items
func (l *List) SetSearch(query string) {
	l.searchQuery = query
	l.Selected = 0
	l.updateFilter()
}

// SearchQuery returns the active filter
func (l *List) SearchQuery() string {
	return l.searchQuery
}

// updateFilter updates the filtered items based on search query
func (l *List) updateFilter() {
	l.filteredItems = l.filteredItems[:0]

	for i, item := range l.Items {
		if l.searchQuery == "" || l.matchesSearch(&item, l.searchQuery) {
			l.filteredItems = append(l.filteredItems, i)
		}
	}
}

// matchesSearch checks if an item matches the search query
func (l *List) matchesSearch(item *ListItem, query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.Description), query) ||
		strings.Contains(strings.ToLower(item.ID), query)
}

// Render renders the list
func (l *List) Render() string {
	primaryColor := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	secondaryColor := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	headerStyle := lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	normalStyle := lipgloss.NewStyle().Foreground(secondaryColor)

	var content []string
	content = append(content, headerStyle.Render(l.Title))

	if l.searchQuery != "" {
		searchText := fmt.Sprintf("Search: %s (%d results)", l.searchQuery, len(l.filteredItems))
		content = append(content, normalStyle.Render(searchText))
	}

	content = append(content, "")

	if len(l.filteredItems) == 0 {
		content = append(content, normalStyle.Render(l.EmptyText))
	}

	// Calculate visible range
	maxVisible := l.Height - 4 // Account for title and spacing
	if maxVisible < 1 {
		maxVisible = 1
	}

	startIndex := 0
	if l.Selected >= maxVisible {
		startIndex = l.Selected - maxVisible + 1
	}

	endIndex := startIndex + maxVisible
	if endIndex > len(l.filteredItems) {
		endIndex = len(l.filteredItems)
	}

	for i := startIndex; i < endIndex; i++ {
		item := l.Items[l.filteredItems[i]]
		content = append(content, l.renderItem(&item, i+1, l.Focused && i == l.Selected))
	}

	if len(l.filteredItems) > maxVisible {
		scrollInfo := fmt.Sprintf("(%d-%d of %d)", startIndex+1, endIndex, len(l.filteredItems))
		content = append(content, "", normalStyle.Render(scrollInfo))
	}

	joined := lipgloss.JoinVertical(lipgloss.Left, content...)

	border := secondaryColor
	if l.Focused {
		border = primaryColor
	}
	panelStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)

	return panelStyle.Width(l.Width).Render(joined)
}

// renderItem renders a single list item
func (l *List) renderItem(item *ListItem, number int, selected bool) string {
	primaryColor := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	secondaryColor := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	selectedColor := lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"}
	successColor := lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	warningColor := lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	errorColor := lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}

	var parts []string

	if selected {
		parts = append(parts, "▶")
	} else {
		parts = append(parts, " ")
	}

	if l.ShowNumbers {
		parts = append(parts, fmt.Sprintf("%2d.", number))
	}

	if l.ShowIcons && item.Icon != "" {
		parts = append(parts, item.Icon)
	}

	title := item.Title
	if item.Description != "" {
		title += " - " + item.Description
	}
	parts = append(parts, title)

	line := strings.Join(parts, " ")

	var style lipgloss.Style
	if selected {
		style = lipgloss.NewStyle().Background(selectedColor).Foreground(primaryColor).Bold(true)
	} else {
		style = lipgloss.NewStyle().Foreground(secondaryColor)
		switch item.Status {
		case "success":
			style = style.Foreground(successColor)
		case "warning":
			style = style.Foreground(warningColor)
		case "error":
			style = style.Foreground(errorColor)
		case "info":
			style = style.Foreground(primaryColor)
		}
	}

	width := l.Width - 4
	if width < 1 {
		width = 1
	}
	return style.Width(width).Render(line)
}

// NewHistoryList creates a list of past analyses in the order given
func NewHistoryList(records []api.HistoryRecord, width, height int) *List {
	list := NewList("History", width, height)
	list.EmptyText = "No analyses yet"
	list.SetItems(HistoryItems(records))
	return list
}

// HistoryItems converts history records to list items
func HistoryItems(records []api.HistoryRecord) []ListItem {
	items := make([]ListItem, 0, len(records))
	for _, record := range records {
		title := record.Filename
		if title == "" {
			title = record.ID
		}

		description := record.UploadDate
		status := "info"
		if record.TotalSales != nil {
			description = strings.TrimSpace(description + " " + formatAmount(*record.TotalSales))
		} else {
			status = "warning"
		}

		items = append(items, ListItem{
			ID:          record.ID,
			Title:       title,
			Description: description,
			Status:      status,
			Icon:        emoji.GetEmoji("file"),
		})
	}
	return items
}
