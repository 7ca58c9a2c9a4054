package habits

import "time"

// DateLayout is the calendar-day format used for log entry dates.
const DateLayout = "2006-01-02"

// Habit models a recurring yes/no question the user answers once per day.
type Habit struct {
	ID           string    `gorm:"column:id;primaryKey;size:36;not null"`
	QuestionText string    `gorm:"column:question_text;type:text;not null"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true;index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Habit) TableName() string {
	return "habits"
}

// LogEntry records one day's answer to one habit. Entries are immutable once
// written; the question text is copied into the entry so history stays stable
// regardless of what later happens to the habit.
type LogEntry struct {
	ID                    string    `gorm:"column:id;primaryKey;size:36;not null"`
	Date                  string    `gorm:"column:date;size:10;not null;index"`
	HabitID               string    `gorm:"column:habit_id;size:36;not null;index"`
	HabitQuestionSnapshot string    `gorm:"column:habit_question_snapshot;type:text;not null"`
	Status                bool      `gorm:"column:status;not null"`
	ExcuseNote            string    `gorm:"column:excuse_note;type:text"`
	Timestamp             time.Time `gorm:"column:timestamp;not null;index"`
}

// TableName provides the explicit table binding for GORM.
func (LogEntry) TableName() string {
	return "logs"
}
