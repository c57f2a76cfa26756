package personnel

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeSeed reads a JSON array of personnel documents and normalizes them for ReplaceAll.
func DecodeSeed(r io.Reader) ([]Document, error) {
	var docs []Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode personnel seed: %w", err)
	}
	for i := range docs {
		doc := &docs[i]
		doc.Name = strings.TrimSpace(doc.Name)
		if doc.EmployeeID <= 0 {
			return nil, fmt.Errorf("personnel seed entry %d: employeeId must be positive", i)
		}
		if doc.Name == "" {
			return nil, fmt.Errorf("personnel seed entry %d: name is required", i)
		}
		if doc.BloodGroup != "" {
			doc.BloodGroup = strings.ToUpper(strings.TrimSpace(doc.BloodGroup))
			if !ValidBloodGroup(doc.BloodGroup) {
				return nil, fmt.Errorf("personnel seed entry %d: unknown blood group %q", i, doc.BloodGroup)
			}
		}
		doc.PAN = strings.ToUpper(strings.TrimSpace(doc.PAN))
		doc.Qualification = CleanList(doc.Qualification)
		doc.Qualifications = CleanList(doc.Qualifications)
		doc.Experience = CleanList(doc.Experience)
	}
	return docs, nil
}
