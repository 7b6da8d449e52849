package settings

// Values is a read-only copy of every setting, for renderers and the CLI.
type Values struct {
	BaseURL              string            `json:"baseUrl"`
	HasToken             bool              `json:"hasToken"`
	Mapping              Mapping           `json:"mapping"`
	MenuBarSensors       []string          `json:"menuBarSensors"`
	Dashboard            []DashboardEntity `json:"dashboard"`
	Thresholds           Thresholds        `json:"thresholds"`
	RefreshInterval      int               `json:"refreshInterval"`
	Appearance           Appearance        `json:"appearance"`
	LaunchAtLogin        bool              `json:"launchAtLogin"`
	NotificationsEnabled bool              `json:"notificationsEnabled"`
}

// Values returns the current settings. The token is reported only as present
// or absent.
func (s *Settings) Values() Values {
	return Values{
		BaseURL:              s.BaseURL(),
		HasToken:             s.Token() != "",
		Mapping:              s.Mapping(),
		MenuBarSensors:       s.MenuBarSensors(),
		Dashboard:            s.DashboardEntities(),
		Thresholds:           s.Thresholds(),
		RefreshInterval:      s.RefreshInterval(),
		Appearance:           s.Appearance(),
		LaunchAtLogin:        s.LaunchAtLogin(),
		NotificationsEnabled: s.NotificationsEnabled(),
	}
}
