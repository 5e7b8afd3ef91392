package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// UserRecord is the document exchanged with the record store. Fields the
// service does not understand are kept in Extra and written back unchanged.
type UserRecord struct {
	ID       string
	Username string
	Words    []WordEntry
	Wrong    []WrongEntry
	Extra    map[string]json.RawMessage

	// rawID holds a non-string id exactly as the store sent it.
	rawID json.RawMessage
}

const (
	fieldID          = "id"
	fieldUsername    = "username"
	fieldWords       = "word_list"
	fieldWrong       = "wrong_list"
	fieldWrongLegacy = "Wrong_list"
)

// Clone returns a deep copy safe to hand to another goroutine.
func (r UserRecord) Clone() UserRecord {
	out := UserRecord{ID: r.ID, Username: r.Username}
	if r.rawID != nil {
		out.rawID = append(json.RawMessage(nil), r.rawID...)
	}
	out.Words = append([]WordEntry(nil), r.Words...)
	out.Wrong = append([]WrongEntry(nil), r.Wrong...)
	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func (r UserRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		doc[k] = v
	}
	if r.rawID != nil && string(r.rawID) == r.ID {
		doc[fieldID] = r.rawID
	} else {
		doc[fieldID] = r.ID
	}
	doc[fieldUsername] = r.Username
	words := r.Words
	if words == nil {
		words = []WordEntry{}
	}
	wrong := r.Wrong
	if wrong == nil {
		wrong = []WrongEntry{}
	}
	doc[fieldWords] = words
	doc[fieldWrong] = wrong
	return json.Marshal(doc)
}

func (r *UserRecord) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out := UserRecord{}
	if raw, ok := doc[fieldID]; ok {
		// mock REST stores hand out string ids, SQL-backed ones may not
		var id any
		if err := json.Unmarshal(raw, &id); err != nil {
			return errors.Wrap(err, "decode id")
		}
		switch v := id.(type) {
		case string:
			out.ID = v
		case nil:
		default:
			out.rawID = append(json.RawMessage(nil), raw...)
			out.ID = string(out.rawID)
		}
	}
	if raw, ok := doc[fieldUsername]; ok {
		if err := json.Unmarshal(raw, &out.Username); err != nil {
			return errors.Wrap(err, "decode username")
		}
	}
	if raw, ok := doc[fieldWords]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &out.Words); err != nil {
			return errors.Wrap(err, "decode word_list")
		}
	}
	wrongRaw, ok := doc[fieldWrong]
	if !ok {
		wrongRaw, ok = doc[fieldWrongLegacy]
	}
	if ok && string(wrongRaw) != "null" {
		if err := json.Unmarshal(wrongRaw, &out.Wrong); err != nil {
			return errors.Wrap(err, "decode wrong_list")
		}
	}
	for _, k := range []string{fieldID, fieldUsername, fieldWords, fieldWrong, fieldWrongLegacy} {
		delete(doc, k)
	}
	if len(doc) > 0 {
		out.Extra = doc
	}
	*r = out
	return nil
}
