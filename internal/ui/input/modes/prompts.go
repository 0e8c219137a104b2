package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"staygrip/internal/ui/input/types"
)

type LocationMode struct {
	TextInputMode
}

func NewLocationMode(ti *textinput.Model) *LocationMode {
	return &LocationMode{
		TextInputMode: NewTextInputMode(types.ModeLocation, "location", "Where: ", "Destin, FL", ti),
	}
}

type PriceMode struct {
	TextInputMode
}

func NewPriceMode(ti *textinput.Model) *PriceMode {
	return &PriceMode{
		TextInputMode: NewTextInputMode(types.ModePrice, "price", "Price per night: ", "100-350, 100-, -350 or empty to clear", ti),
	}
}

type DatesMode struct {
	TextInputMode
}

func NewDatesMode(ti *textinput.Model) *DatesMode {
	return &DatesMode{
		TextInputMode: NewTextInputMode(types.ModeDates, "dates", "Dates: ", "2025-07-01 2025-07-05 or empty to clear", ti),
	}
}

type OpenURLMode struct {
	TextInputMode
}

func NewOpenURLMode(ti *textinput.Model) *OpenURLMode {
	return &OpenURLMode{
		TextInputMode: NewTextInputMode(types.ModeOpenURL, "open", "Open: ", "/properties/Destin, FL?minBedrooms=2", ti),
	}
}

type ListIDMode struct {
	TextInputMode
}

func NewListIDMode(ti *textinput.Model) *ListIDMode {
	return &ListIDMode{
		TextInputMode: NewTextInputMode(types.ModeListID, "listing", "Listing #: ", "12345", ti),
	}
}
