package config

// GoogleConfig holds the Google Calendar sync settings.  The sync is
// optional: when no credentials file is configured the consumer skips
// the calendar step entirely.
type GoogleConfig struct {
	CredentialsFile string
	CalendarScope   string
	CalendarID      string
	Timezone        string
}

// Enabled reports whether calendar sync is configured.
func (g GoogleConfig) Enabled() bool {
	return g.CredentialsFile != "" && g.CalendarID != ""
}

// LoadGoogleConfig reads the calendar sync settings from the
// environment.  Only the credentials file and calendar id are required
// to turn the feature on.
func LoadGoogleConfig() GoogleConfig {
	return GoogleConfig{
		CredentialsFile: envStr("GOOGLE_CREDENTIALS_FILE", ""),
		CalendarScope:   envStr("GOOGLE_CALENDAR_SCOPE", "https://www.googleapis.com/auth/calendar"),
		CalendarID:      envStr("GOOGLE_CALENDAR_ID", ""),
		Timezone:        envStr("GOOGLE_CALENDAR_TIMEZONE", "UTC"),
	}
}
