package keybuilder

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	Warranty string = "warranty"
	Dedupe   string = "dedupe"
	Scan     string = "scan"
)

func DedupeKeyBuild(recordID, recipientID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s:%s", Warranty, Dedupe, recordID, recipientID)
}

func ScanSnapshotKeyBuild(ownerID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", Warranty, Scan, ownerID)
}
