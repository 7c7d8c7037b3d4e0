// Package geocode resolves a free text target to coordinates and a
// forecast point back to a place name.
package geocode

import (
	"context"
	"net/url"
	"strings"

	"github.com/swelljoe/wthrq/internal/payload"
	"github.com/swelljoe/wthrq/internal/remote"
)

// Forward yields the coordinates of a geocoding target.
type Forward interface {
	Coordinates() (Coordinates, error)
}

// Reverse yields the human readable name of a location.
type Reverse interface {
	Location() (string, error)
}

// searchResult is a Nominatim search response: a list of candidates, the
// first of which is used.
type searchResult struct {
	doc payload.Document
}

func (s searchResult) Coordinates() (Coordinates, error) {
	lat, err := s.doc.Float(0, "lat")
	if err != nil {
		return Coordinates{}, err
	}
	lon, err := s.doc.Float(0, "lon")
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// reverseResult is a Nominatim reverse response.
type reverseResult struct {
	doc payload.Document
}

func (r reverseResult) Location() (string, error) {
	return r.doc.String("display_name")
}

// ForwardFromFile reads a saved Nominatim search response.
func ForwardFromFile(path string) (Forward, error) {
	doc, err := payload.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return searchResult{doc: doc}, nil
}

// ReverseFromFile reads a saved Nominatim reverse response.
func ReverseFromFile(path string) (Reverse, error) {
	doc, err := payload.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return reverseResult{doc: doc}, nil
}

// Nominatim queries the OpenStreetMap Nominatim API.
type Nominatim struct {
	client  *remote.Client
	baseURL string
}

// NewNominatim creates a Nominatim client rooted at baseURL.
func NewNominatim(client *remote.Client, baseURL string) *Nominatim {
	return &Nominatim{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Search looks up free text. Parameters are written in a fixed order so the
// URL in a failure report matches the request that was sent.
func (n *Nominatim) Search(ctx context.Context, query string) (Forward, error) {
	u := n.baseURL + "/search?q=" + url.QueryEscape(query) + "&format=jsonv2"

	doc, err := n.client.GetJSON(ctx, u, remote.AcceptJSON)
	if err != nil {
		return nil, err
	}
	return searchResult{doc: doc}, nil
}

// Reverse looks up the place containing at.
func (n *Nominatim) Reverse(ctx context.Context, at Coordinates) (Reverse, error) {
	u := n.baseURL + "/reverse?lat=" + FormatDecimal(at.Lat) +
		"&lon=" + FormatDecimal(at.Lon) + "&format=jsonv2"

	doc, err := n.client.GetJSON(ctx, u, remote.AcceptJSON)
	if err != nil {
		return nil, err
	}
	return reverseResult{doc: doc}, nil
}
