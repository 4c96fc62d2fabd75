// stm-dashboard/internal/idgen/idgen.go

// Package idgen derives human-readable student display IDs of the form
// EHA-{BATCH_SHORT}-{NNNN}, e.g. EHA-M1-0001, unique per teacher.
package idgen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/riajulpro/stm-dashboard/models"

	"gorm.io/gorm"
)

// Prefix shared by every generated student ID.
const Prefix = "EHA"

// maxAttempts bounds the collision-retry loop. Two concurrent creations can
// still compute the same sequence number; the caller closes that window by
// inserting inside a transaction against the (teacher_id, student_id) unique
// index and retrying on conflict.
const maxAttempts = 5

var (
	splitRe    = regexp.MustCompile(`[\s\-_]+`)
	digitsRe   = regexp.MustCompile(`\d+`)
	hasDigitRe = regexp.MustCompile(`\d`)
	seqRe      = regexp.MustCompile(`-(\d+)$`)
	formatRe   = regexp.MustCompile(`^EHA-([A-Z0-9]+)-\d{4,}$`)

	// Filler words that carry no information in a batch name.
	stopwords = map[string]bool{
		"batch": true, "class": true, "the": true, "and": true, "of": true,
	}
)

// ErrExhausted is returned when every retry hit an existing ID.
var ErrExhausted = errors.New("idgen: could not allocate a unique student ID")

// BatchShortName derives the short code used as the middle segment of a
// student ID:
//
//	"Morning Batch 1" -> "M1"
//	"Evening Batch A" -> "EA"
//	"SSC 2024"        -> "S2024"
//	"SSC"             -> "SS"
func BatchShortName(batchName string) string {
	words := splitRe.Split(strings.ToLower(strings.TrimSpace(batchName)), -1)

	filtered := words[:0]
	for _, w := range words {
		if w != "" && !stopwords[w] {
			filtered = append(filtered, w)
		}
	}

	if len(filtered) == 0 {
		// Fallback: first 3 characters of the raw name.
		return strings.ToUpper(firstRunes(batchName, 3))
	}

	// A numbered batch keeps its number: first letter of the first word plus
	// the digits of the first word that contains any.
	for _, w := range filtered {
		if hasDigitRe.MatchString(w) {
			return strings.ToUpper(firstRunes(filtered[0], 1)) + digitsRe.FindString(w)
		}
	}

	// Multi-word names abbreviate to initials, at most three.
	if len(filtered) >= 2 {
		var b strings.Builder
		for i, w := range filtered {
			if i == 3 {
				break
			}
			b.WriteString(strings.ToUpper(firstRunes(w, 1)))
		}
		return b.String()
	}

	// Single word: 3 characters when the word is long enough, otherwise 2.
	word := filtered[0]
	n := 2
	if utf8.RuneCountInString(word) >= 4 {
		n = 3
	}
	return strings.ToUpper(firstRunes(word, n))
}

// firstRunes truncates by character, not byte, so multi-byte names are never
// cut mid-rune.
func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// Generate allocates the next free display ID for a batch within a teacher's
// scope. It only reads; persisting the ID together with the student row is
// the caller's job.
func Generate(db *gorm.DB, batchName string, teacherID uint) (string, error) {
	prefix := fmt.Sprintf("%s-%s", Prefix, BatchShortName(batchName))

	for attempt := 0; attempt < maxAttempts; attempt++ {
		next, err := nextSequence(db, prefix, teacherID)
		if err != nil {
			return "", err
		}

		// Zero-padded to 4 digits; the field widens naturally past 9999.
		studentID := fmt.Sprintf("%s-%04d", prefix, next)

		// Race-condition guard: another request may have taken this ID
		// between the max-scan and now.
		var count int64
		if err := db.Model(&models.Student{}).
			Where("teacher_id = ? AND student_id = ?", teacherID, studentID).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return studentID, nil
		}
	}

	return "", ErrExhausted
}

// nextSequence finds the highest existing sequence under prefix and returns
// its successor, or 1 when the prefix is unused.
func nextSequence(db *gorm.DB, prefix string, teacherID uint) (int, error) {
	var latest models.Student
	err := db.Select("student_id").
		Where("teacher_id = ? AND student_id LIKE ?", teacherID, prefix+"%").
		Order("student_id DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	m := seqRe.FindStringSubmatch(latest.StudentID)
	if m == nil {
		return 1, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1, nil
	}
	return n + 1, nil
}

// IsValidFormat reports whether id looks like a generated student ID.
func IsValidFormat(id string) bool {
	return formatRe.MatchString(id)
}

// ExtractShort returns the batch short code embedded in a student ID, or ""
// when the ID does not match the generated format.
func ExtractShort(id string) string {
	m := formatRe.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	return m[1]
}
