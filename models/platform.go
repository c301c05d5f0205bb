package models

import (
	"github.com/go-playground/validator"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func ScanPlatform(value string) Platform {
	return Platform(value)
}

func ValidatePlatformRaw(value string) bool {
	switch Platform(value) {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	return ValidatePlatformRaw(fl.Field().String())
}

var seasons = map[string]bool{"spring": true, "summer": true, "fall": true, "winter": true, SeasonAll: true}

func ValidSeason(value string) bool {
	return seasons[value]
}

func ValidateSeason(fl validator.FieldLevel) bool {
	return ValidSeason(fl.Field().String())
}

func ValidLaundryState(value string) bool {
	switch LaundryState(value) {
	case LaundryClean, LaundryDirty, LaundryInLaundry, LaundryDrying:
		return true
	}
	return false
}

func ValidateLaundryState(fl validator.FieldLevel) bool {
	return ValidLaundryState(fl.Field().String())
}
