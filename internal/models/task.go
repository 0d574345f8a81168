package models

// WelcomeTaskText is the text of the task every new account starts with.
const WelcomeTaskText = "Welcome to your todo list! Hit the + button to add a new todo"

type Task struct {
	ID        int64
	OwnerID   int64
	Text      string
	Completed bool
}
