package internal

import (
	"fmt"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"

	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/remix"
	"github.com/jamesprial/go-rouvy-api-wrapper/pkg/types"
)

const (
	routePrefix  = "routes/_main."
	routesParam  = "_routes"
	dataSuffix   = ".data"
	dataField    = "data"
	eventsField  = "events"
	eventField   = "event"
	RouteSearch  = "events.search"
	RouteEventID = "events_.$id"
)

// RouteKey is the key a route's data sits under in a decoded document.
func RouteKey(route string) string {
	return routePrefix + route
}

// DataTarget builds the relative URL of a route data request. An empty
// route leaves out the _routes selector.
func DataTarget(path, route string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	if route != "" {
		q.Set(routesParam, RouteKey(route))
	}

	target := path + dataSuffix
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

// Parser binds decoded route data to the records in pkg/types.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// RouteData returns the subtree for route from a decoded document.
func (p *Parser) RouteData(doc remix.Value, route string) (remix.Value, error) {
	key := RouteKey(route)
	v, ok := remix.Lookup(doc, key)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "route data", Message: fmt.Sprintf("document has no %q entry", key)}
	}
	return v, nil
}

// ParseEvents extracts the data.events list of an events.search subtree.
func (p *Parser) ParseEvents(subtree remix.Value) ([]*types.Event, error) {
	v, ok := remix.Lookup(subtree, dataField, eventsField)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "parse events", Message: "no data.events field"}
	}

	seq, ok := v.(remix.Sequence)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "parse events", Message: "data.events is a " + v.Kind().String()}
	}

	events := make([]*types.Event, 0, len(seq))
	for i, item := range seq {
		var event types.Event
		if err := bind(item, &event); err != nil {
			return nil, &pkgerrs.ParseError{Operation: "parse events", Message: fmt.Sprintf("event %d", i), Err: err}
		}
		events = append(events, &event)
	}
	return events, nil
}

// ParseEvent extracts an event detail. The record is read from data.event
// when present, otherwise from data itself.
func (p *Parser) ParseEvent(subtree remix.Value) (*types.Event, error) {
	v, ok := remix.Lookup(subtree, dataField, eventField)
	if !ok {
		v, ok = remix.Lookup(subtree, dataField)
	}
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "parse event", Message: "no data field"}
	}
	if v.Kind() != remix.KindMapping {
		return nil, &pkgerrs.ParseError{Operation: "parse event", Message: "event is a " + v.Kind().String()}
	}

	var event types.Event
	if err := bind(v, &event); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "parse event", Err: err}
	}
	return &event, nil
}

// bind decodes v into out. Timestamps are RFC 3339 strings; numbers and
// strings convert into each other so IDs bind whichever way they are sent.
func bind(v remix.Value, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(remix.Native(v))
}
