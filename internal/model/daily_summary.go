package model

import "time"

// DailySummary holds the earliest and latest access event observed for one
// person on one local calendar day. PersonID stores the grouping key, which
// is the device person id when present and "name:<personName>" otherwise.
type DailySummary struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	PersonID        string    `gorm:"size:256;not null;uniqueIndex:idx_summary_person_date"`
	Date            string    `gorm:"size:10;not null;uniqueIndex:idx_summary_person_date"`
	PersonName      string    `gorm:"size:256;not null"`
	FirstIn         time.Time `gorm:"not null"`
	LastOut         time.Time `gorm:"not null"`
	FirstConfidence float64
	LastConfidence  float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GroupKey derives the summary grouping key for an event. Events without a
// person id are grouped by name so that distinct unnamed persons do not all
// collapse under the empty key. Two different people both reported as
// "Unknown" on the same day still share one row; that matches the device
// contract as observed.
func GroupKey(personID, personName string) string {
	if personID != "" {
		return personID
	}
	return "name:" + personName
}
