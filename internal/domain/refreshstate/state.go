package refreshstate

// State is the published refresh mode that drives polling cadence.
type State string

const (
	OutsideGameweek  State = "outside_gameweek"
	LiveMatches      State = "live_matches"
	BonusPending     State = "bonus_pending"
	PriceWindow      State = "price_window"
	TransferDeadline State = "transfer_deadline"
	Idle             State = "idle"
)

var labels = map[State]string{
	OutsideGameweek:  "Outside gameweek",
	LiveMatches:      "Live matches",
	BonusPending:     "Bonus pending",
	PriceWindow:      "Price change window",
	TransferDeadline: "Transfer deadline",
	Idle:             "Idle",
}

func All() []State {
	return []State{OutsideGameweek, LiveMatches, BonusPending, PriceWindow, TransferDeadline, Idle}
}

func (s State) Valid() bool {
	_, ok := labels[s]
	return ok
}

func (s State) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}
	return string(s)
}

// Result is what the machine publishes.
type Result struct {
	State State  `json:"state"`
	Label string `json:"stateLabel"`
}

func resultOf(s State) Result {
	return Result{State: s, Label: s.Label()}
}
