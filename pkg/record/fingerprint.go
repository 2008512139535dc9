package record

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
)

// fingerprintSpace namespaces record fingerprints.
var fingerprintSpace = uuid.MustParse("6f1c3a52-5d0e-4b8e-9a57-2f4c1b7de0a1")

// Fingerprint is a stable name-based UUID of the record's JSON form and its
// occurrence among identical records of the same export.
func (r Record) Fingerprint(occurrence int) string {
	return fingerprint(r.canonical(), occurrence)
}

// Fingerprints returns one fingerprint per record. The nth copy of an
// identical record gets occurrence n, so two real purchases with equal
// fields stay distinct and keep their fingerprints across runs.
func Fingerprints(records []Record) []string {
	seen := map[string]int{}
	out := make([]string, len(records))
	for i, r := range records {
		data := r.canonical()
		n := seen[string(data)]
		seen[string(data)] = n + 1
		out[i] = fingerprint(data, n)
	}
	return out
}

func (r Record) canonical() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		// Every field is a primitive or a string slice.
		panic(err)
	}
	return data
}

func fingerprint(data []byte, occurrence int) string {
	name := append(data, '#')
	name = strconv.AppendInt(name, int64(occurrence), 10)
	return uuid.NewSHA1(fingerprintSpace, name).String()
}
