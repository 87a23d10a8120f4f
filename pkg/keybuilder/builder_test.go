package keybuilder

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDedupeKeyBuild(t *testing.T) {
	recordID := uuid.New()
	recipientID := uuid.New()

	got := DedupeKeyBuild(recordID, recipientID)
	assert.Equal(t, fmt.Sprintf("warranty:dedupe:%s:%s", recordID, recipientID), got)
}

func TestScanSnapshotKeyBuild(t *testing.T) {
	ownerID := uuid.New()

	got := ScanSnapshotKeyBuild(ownerID)
	assert.Equal(t, fmt.Sprintf("warranty:scan:%s", ownerID), got)
}
