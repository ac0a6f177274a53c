package team

// Team represents one club.
type Team struct {
	ID        int
	ShortName string
	Name      string
}
