package protocol

// PresenceRecord is one session's identity, presence, and geolocation as
// broadcast to channel members and enumerated by `users`.
type PresenceRecord struct {
	Nick     string
	Status   uint32
	Opponent string
	City     string
	Country  string
	CC       string
	Port     uint32
}

// EncodePresence appends one presence record's fields to e.
func (e *Encoder) EncodePresence(p PresenceRecord) *Encoder {
	return e.String(p.Nick).U32(p.Status).String(p.Opponent).
		String(p.City).String(p.Country).String(p.CC).U32(p.Port)
}

// DecodePresence reads one presence record's fields from d.
func (d *Decoder) DecodePresence() PresenceRecord {
	var p PresenceRecord
	p.Nick = d.String()
	p.Status = d.U32()
	p.Opponent = d.String()
	p.City = d.String()
	p.Country = d.String()
	p.CC = d.String()
	p.Port = d.U32()
	return p
}

// EncodeAuthPush builds the legacy double-record auth-success push: the
// authenticating session's own presence record, encoded twice in a row.
func EncodeAuthPush(p PresenceRecord) []byte {
	return NewEncoder().EncodePresence(p).EncodePresence(p).Payload()
}
