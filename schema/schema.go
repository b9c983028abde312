// Package schema has models, constants and wire formats for all parts of dailyxp.
package schema

// RecordVersion is the on-disk version of DailyRecord written by this build.
const RecordVersion = 3

// DateLayout is the calendar-date layout used for record keys and log dates.
const DateLayout = "2006-01-02"

// ClockLayout is the HH:MM layout used for activity timestamps.
const ClockLayout = "15:04"
