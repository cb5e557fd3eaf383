package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
)

// Info is the school's public profile. There is exactly one per backend.
type Info struct {
	Name    string   `json:"name"`
	Logo    string   `json:"logo"`
	Gallery []string `json:"gallery"`
	Address string   `json:"address"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Website string   `json:"website"`
}

// UpdateInfo defines what information may be provided to modify the school profile.
// Blank fields keep their current value.
type UpdateInfo struct {
	Name    string   `json:"name" validate:"required,notblank"`
	Logo    string   `json:"logo,omitempty" validate:"omitempty,url"`
	Gallery []string `json:"gallery,omitempty" validate:"omitempty,dive,url"`
	Address string   `json:"address,omitempty"`
	Email   string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string   `json:"phone,omitempty" validate:"omitempty,phone"`
	Website string   `json:"website,omitempty" validate:"omitempty,url"`
}

func (ui *UpdateInfo) Validate(orig Info, validate *validator.Validate) error {
	ui.Name = orDefault(core.CleanString(ui.Name), orig.Name)
	ui.Logo = orDefault(core.CleanString(ui.Logo), orig.Logo)
	ui.Address = orDefault(core.CleanString(ui.Address), orig.Address)
	ui.Email = orDefault(core.CleanString(ui.Email, true /* lower */), orig.Email)
	ui.Phone = orDefault(core.CleanString(ui.Phone), orig.Phone)
	ui.Website = orDefault(core.CleanString(ui.Website), orig.Website)

	gallery := make([]string, 0, len(ui.Gallery))
	for _, img := range ui.Gallery {
		if img = core.CleanString(img); img != "" {
			gallery = append(gallery, img)
		}
	}
	if len(gallery) == 0 {
		gallery = orig.Gallery
	}
	ui.Gallery = gallery
	return validate.Struct(ui)
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
