package manager

// Pick is one slot of a manager's squad for a gameweek.
type Pick struct {
	ManagerID     int
	Gameweek      int
	PlayerID      int
	Slot          int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
}

// Starting reports whether the pick is in the first eleven.
func (p Pick) Starting() bool {
	return p.Slot >= 1 && p.Slot <= 11
}
