package workflow

// Status is the single vocabulary for a candidate's pipeline state. The
// board columns, the move buttons and the stored estado_interno column all
// use these values.
type Status string

const (
	StatusNuevo         Status = "nuevo"
	StatusNoValido      Status = "no_valido"
	StatusPosible       Status = "posible"
	StatusBuenCandidato Status = "buen_candidato"
)

// Order drives the column layout and the left/right move buttons.
var Order = []Status{StatusNuevo, StatusNoValido, StatusPosible, StatusBuenCandidato}

// Labels are the human-facing column titles.
var Labels = map[Status]string{
	StatusNuevo:         "Nuevo",
	StatusNoValido:      "No válido",
	StatusPosible:       "Posible",
	StatusBuenCandidato: "Buen candidato",
}

// LegacyStatus is the public vocabulary the first version of the portal
// persisted. It survives only as a read-time view for candidates checking
// their own applications, and as a migration source for old rows.
type LegacyStatus string

const (
	LegacyReceived  LegacyStatus = "received"
	LegacyReviewing LegacyStatus = "reviewing"
	LegacyContacted LegacyStatus = "contacted"
	LegacyClosed    LegacyStatus = "closed"
)

var fromLegacy = map[LegacyStatus]Status{
	LegacyReceived:  StatusNuevo,
	LegacyReviewing: StatusPosible,
	LegacyContacted: StatusBuenCandidato,
	LegacyClosed:    StatusNoValido,
}

var toLegacy = map[Status]LegacyStatus{
	StatusNuevo:         LegacyReceived,
	StatusNoValido:      LegacyClosed,
	StatusPosible:       LegacyReviewing,
	StatusBuenCandidato: LegacyContacted,
}

// Valid reports whether s is a member of the current vocabulary.
func (s Status) Valid() bool {
	_, ok := Labels[s]
	return ok
}

// FromLegacy migrates an old public-vocabulary value.
func FromLegacy(l LegacyStatus) (Status, bool) {
	s, ok := fromLegacy[l]
	return s, ok
}

// ToLegacy derives the public-facing state shown on the candidate portal.
func ToLegacy(s Status) LegacyStatus {
	if l, ok := toLegacy[s]; ok {
		return l
	}
	return LegacyReceived
}

// Normalize parses a stored status value, migrating legacy rows in place.
// Anything unrecognized lands in the first column rather than disappearing
// from the board.
func Normalize(raw string) Status {
	if s := Status(raw); s.Valid() {
		return s
	}
	if s, ok := FromLegacy(LegacyStatus(raw)); ok {
		return s
	}
	return StatusNuevo
}

func indexOf(s Status) int {
	for i, v := range Order {
		if v == s {
			return i
		}
	}
	return -1
}

// Next returns the status one column to the right. ok is false at the
// terminal state, where the right-move control is disabled.
func Next(s Status) (Status, bool) {
	i := indexOf(s)
	if i < 0 || i == len(Order)-1 {
		return s, false
	}
	return Order[i+1], true
}

// Prev returns the status one column to the left.
func Prev(s Status) (Status, bool) {
	i := indexOf(s)
	if i <= 0 {
		return s, false
	}
	return Order[i-1], true
}
