package core

// ActionRecord is one immutable canvas event.
type ActionRecord struct {
	Seq     uint64
	Payload string
}

// ActionLog is the append-only ordered record of canvas events. Like the
// Registry, it carries no lock: the Session serializes access.
type ActionLog struct {
	records []ActionRecord
	nextSeq uint64
}

func NewActionLog() *ActionLog {
	return &ActionLog{}
}

// Append stores the payload at the next sequence position and returns it.
func (l *ActionLog) Append(payload string) uint64 {
	seq := l.nextSeq
	l.nextSeq++
	l.records = append(l.records, ActionRecord{Seq: seq, Payload: payload})
	return seq
}

// Snapshot returns every payload in append order.
func (l *ActionLog) Snapshot() []string {
	out := make([]string, len(l.records))
	for i, rec := range l.records {
		out[i] = rec.Payload
	}
	return out
}

func (l *ActionLog) Len() int { return len(l.records) }

// Clear empties the log.
func (l *ActionLog) Clear() {
	l.records = nil
	l.nextSeq = 0
}

// Restore replaces the log wholesale, renumbering from zero.
func (l *ActionLog) Restore(payloads []string) {
	l.records = make([]ActionRecord, len(payloads))
	for i, p := range payloads {
		l.records[i] = ActionRecord{Seq: uint64(i), Payload: p}
	}
	l.nextSeq = uint64(len(payloads))
}
