// internal/app/system/inputval/bulkassign.go
package inputval

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// BulkAssign is a validated bulk manufacturer assignment request.
type BulkAssign struct {
	UserIDs        []string
	ManufacturerID string
}

// userRef accepts either "id" or {"_id": "id"} in the users array.
type userRef struct {
	ID string
}

func (u *userRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &u.ID)
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	u.ID = obj.ID
	return nil
}

type bulkAssignBody struct {
	Users          *[]userRef `json:"users"`
	ManufacturerID *string    `json:"manufacturerId"`
}

// ParseBulkAssign decodes and validates a bulk-add request body.
// users must be a non-empty array whose entries carry a non-empty id;
// manufacturerId must be a non-empty string. Unknown properties are rejected.
func ParseBulkAssign(body io.Reader) (BulkAssign, Errors) {
	errs := Errors{}
	var in bulkAssignBody

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		if f, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			f = strings.Trim(f, `"`)
			errs.Add(f, "property "+f+" should not exist")
		} else {
			errs.Add("body", "request body must be a JSON object")
		}
		return BulkAssign{}, errs
	}

	var out BulkAssign
	switch {
	case in.Users == nil:
		errs.Add("users", "users must be an array")
		errs.Add("users", "users must contain at least 1 elements")
	case len(*in.Users) == 0:
		errs.Add("users", "users must contain at least 1 elements")
	default:
		for i, u := range *in.Users {
			id := strings.TrimSpace(u.ID)
			if id == "" {
				errs.Add("users."+strconv.Itoa(i)+"._id", "_id should not be empty")
				continue
			}
			out.UserIDs = append(out.UserIDs, id)
		}
	}

	if in.ManufacturerID == nil || strings.TrimSpace(*in.ManufacturerID) == "" {
		errs.Add("manufacturerId", "manufacturerId should not be empty")
	} else {
		out.ManufacturerID = strings.TrimSpace(*in.ManufacturerID)
	}

	return out, errs
}
