package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/casewise/ontolink/core"
)

// Key prefixes for different data types
const (
	sectionRecordPrefix   = "secrec"
	conceptRecordPrefix   = "conrec"
	conceptURIPrefix      = "conuri"
	assocRecordPrefix     = "assrec"
	assocConceptIdxPrefix = "asscon"
)

// makeSectionKey generates a key for a section by ID.
func makeSectionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sectionRecordPrefix, id))
}

// makeConceptKey generates a key for a concept by ID.
func makeConceptKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conceptRecordPrefix, id))
}

// makeConceptURIKey generates a key for concept lookup by URI.
func makeConceptURIKey(uri string) []byte {
	return []byte(conceptURIPrefix + ":" + uri)
}

// makeAssociationKey generates the composite primary key for an association.
// Format: prefix:sectionID:conceptID, fixed width so a section's associations
// form one contiguous range.
func makeAssociationKey(sectionID, conceptID core.ID) []byte {
	prefix := assocRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for sectionID + 8 bytes for conceptID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(sectionID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(conceptID))
	return buf
}

// makePartialAssociationKey generates a partial key for scanning all of a
// section's associations.
// Format: prefix:sectionID
func makePartialAssociationKey(sectionID core.ID) []byte {
	prefix := assocRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sectionID))
	return buf
}

// makeAssocConceptIdxKey generates a composite key for the concept index,
// used by category queries to find every section associated with a concept.
// Format: prefix:conceptID:sectionID
func makeAssocConceptIdxKey(conceptID, sectionID core.ID) []byte {
	prefix := assocConceptIdxPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for conceptID + 8 bytes for sectionID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(conceptID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(sectionID))
	return buf
}

// makePartialAssocConceptIdxKey generates a partial key for concept-index scans.
// Format: prefix:conceptID
func makePartialAssocConceptIdxKey(conceptID core.ID) []byte {
	prefix := assocConceptIdxPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(conceptID))
	return buf
}
