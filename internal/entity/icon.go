package entity

import "strings"

// Icon is a symbolic icon identifier. Renderers map it to glyphs.
type Icon string

const (
	IconLightOn       Icon = "lightbulb.fill"
	IconLightOff      Icon = "lightbulb"
	IconSwitchOn      Icon = "power.circle.fill"
	IconSwitchOff     Icon = "power.circle"
	IconBinaryOn      Icon = "circle.fill"
	IconBinaryOff     Icon = "circle"
	IconThermometer   Icon = "thermometer"
	IconLocked        Icon = "lock.fill"
	IconUnlocked      Icon = "lock.open"
	IconCoverOpen     Icon = "blinds.horizontal.open"
	IconCoverClosed   Icon = "blinds.horizontal.closed"
	IconUpdatePending Icon = "arrow.triangle.2.circlepath.circle.fill"
	IconUpToDate      Icon = "checkmark.circle"
	IconPerson        Icon = "person.fill"
	IconSunUp         Icon = "sun.max.fill"
	IconSunDown       Icon = "moon.fill"
	IconWeather       Icon = "cloud.sun.fill"
	IconPlaying       Icon = "play.circle.fill"
	IconPaused        Icon = "pause.circle"
	IconVacuum        Icon = "sparkles"
	IconFan           Icon = "fan"
	IconCamera        Icon = "camera.fill"
	IconAlarm         Icon = "shield.fill"
	IconGeneric       Icon = "questionmark.circle"

	IconHumidity   Icon = "humidity.fill"
	IconBattery    Icon = "battery.100"
	IconPower      Icon = "bolt.fill"
	IconLightLevel Icon = "sun.max"
	IconSensor     Icon = "sensor.fill"
)

// Icon picks an icon from the domain and, for a few domains, the state.
func (s State) Icon() Icon {
	on := s.State == "on"
	switch s.Domain() {
	case "light":
		return pick(on, IconLightOn, IconLightOff)
	case "switch":
		return pick(on, IconSwitchOn, IconSwitchOff)
	case "sensor":
		return s.sensorIcon()
	case "binary_sensor":
		return pick(on, IconBinaryOn, IconBinaryOff)
	case "climate":
		return IconThermometer
	case "lock":
		return pick(s.State == "locked", IconLocked, IconUnlocked)
	case "cover":
		return pick(s.State == "open", IconCoverOpen, IconCoverClosed)
	case "update":
		return pick(on, IconUpdatePending, IconUpToDate)
	case "person":
		return IconPerson
	case "sun":
		return pick(s.State == "above_horizon", IconSunUp, IconSunDown)
	case "weather":
		return IconWeather
	case "media_player":
		return pick(s.State == "playing", IconPlaying, IconPaused)
	case "vacuum":
		return IconVacuum
	case "fan":
		return IconFan
	case "camera":
		return IconCamera
	case "alarm_control_panel":
		return IconAlarm
	default:
		return IconGeneric
	}
}

// sensorIcon guesses the sensor kind from its unit, then its id.
func (s State) sensorIcon() Icon {
	unit := s.Attributes.UnitOfMeasurement
	switch {
	case strings.Contains(unit, "°") || strings.Contains(unit, "C") || strings.Contains(unit, "F"):
		return IconThermometer
	case strings.Contains(unit, "%") && strings.Contains(s.EntityID, "humidity"):
		return IconHumidity
	case strings.Contains(unit, "%") && strings.Contains(s.EntityID, "battery"):
		return IconBattery
	case strings.Contains(unit, "W"):
		return IconPower
	case strings.Contains(unit, "lx") || strings.Contains(unit, "lm"):
		return IconLightLevel
	}
	return IconSensor
}

func pick(cond bool, yes, no Icon) Icon {
	if cond {
		return yes
	}
	return no
}

// Color classifies a state value for rendering.
type Color int

const (
	ColorDefault Color = iota
	ColorPositive
	ColorInactive
	ColorError
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case ColorPositive:
		return "positive"
	case ColorInactive:
		return "inactive"
	case ColorError:
		return "error"
	default:
		return "default"
	}
}

// StateColor classifies the state word, ignoring case.
func (s State) StateColor() Color {
	switch strings.ToLower(s.State) {
	case "on", "open", "unlocked", "playing", "home", "above_horizon":
		return ColorPositive
	case "off", "closed", "locked", "paused", "idle", "away", "below_horizon":
		return ColorInactive
	case "unavailable", "unknown":
		return ColorError
	default:
		return ColorDefault
	}
}
