package keymap

// Category represents a logical grouping of commands for the command palette.
type Category string

const (
	CategoryGeneral    Category = "General"
	CategoryNavigation Category = "Navigation"
	CategoryRepository Category = "Repository"
	CategoryGit        Category = "Git"
	CategoryWorkspace  Category = "Workspace"
	CategoryView       Category = "View"
)

var categoryOrder = map[Category]int{
	CategoryGeneral:    0,
	CategoryRepository: 1,
	CategoryGit:        2,
	CategoryWorkspace:  3,
	CategoryNavigation: 4,
	CategoryView:       5,
}

// Command is a named action that bindings and the palette can invoke.
type Command struct {
	ID       string   // Unique identifier (e.g., "repository.fetch")
	Label    string   // Palette label (e.g., "Fetch")
	Category Category // Logical grouping for palette display
	Handler  func()   // Invoked synchronously; must not block
}
