package servicedef

import (
	"net/url"
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Collection paths of the mottag API.
const (
	PatiosPath = "/api/v1/patios"
	MotosPath  = "/api/v1/motos"
	TagsPath   = "/api/v1/tags"
)

// ItemPath returns the path of a single resource within a collection.
func ItemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

// ListQuery builds the paging parameters accepted by every list endpoint.
func ListQuery(page, pageSize int) url.Values {
	q := make(url.Values)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return q
}

// PatioParams is the request body for creating or updating a yard.
type PatioParams struct {
	Nome   string  `json:"nome"`
	Cidade string  `json:"cidade"`
	Estado string  `json:"estado"`
	Pais   string  `json:"pais"`
	AreaM2 float64 `json:"areaM2"`
}

// MotoStatus is the numeric vehicle status. The flows only create available vehicles.
type MotoStatus int

const MotoDisponivel MotoStatus = 0

// MotoParams is the request body for creating or updating a vehicle. PatioID references the yard
// the vehicle belongs to.
type MotoParams struct {
	PatioID string     `json:"patioId"`
	Placa   string     `json:"placa"`
	Modelo  string     `json:"modelo"`
	Status  MotoStatus `json:"status"`
}

// TagTipo is the numeric tag hardware type.
type TagTipo int

const TagV1 TagTipo = 0

// TagParams is the request body for creating or updating a tracking tag. Serial must be unique
// on the server; creating a second tag with the same serial is rejected with a 409.
type TagParams struct {
	MotoID     ldvalue.OptionalString `json:"motoId"`
	Serial     string                 `json:"serial"`
	Tipo       TagTipo                `json:"tipo"`
	BateriaPct int                    `json:"bateriaPct"`
}
