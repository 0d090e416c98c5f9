package vehicles

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	vehiclesdomain "happi-app-go/internal/domain/vehicles"
	"happi-app-go/internal/transport/httpserver/handler/common"
)

const imageField = "vehicle_card_image"

var errBadForm = errors.New("vehicles: malformed form")

// decodeVehicle accepts a JSON body or a multipart form carrying the card
// image. The image is read up to one byte past the limit so the size rule
// can reject it.
func (h *Handlers) decodeVehicle(w http.ResponseWriter, r *http.Request) (vehiclesdomain.Input, *vehiclesdomain.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input vehiclesdomain.Input
		if err := common.DecodeJSON(r, &input); err != nil {
			return input, nil, errBadForm
		}
		return input, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return vehiclesdomain.Input{}, nil, errBadForm
	}

	input := vehiclesdomain.Input{
		Make:         r.FormValue("make"),
		Model:        r.FormValue("model"),
		Year:         r.FormValue("year"),
		LicensePlate: r.FormValue("license_plate"),
		VIN:          common.OptionalString(r.FormValue("vin")),
		Color:        common.OptionalString(r.FormValue("color")),
	}

	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil, nil
	}
	if err != nil {
		return input, nil, errBadForm
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return input, nil, errBadForm
	}
	return input, &vehiclesdomain.Image{Filename: strings.TrimSpace(header.Filename), Data: data}, nil
}
