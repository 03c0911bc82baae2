package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

// DecodeConfig parses a dataset configuration document into its
// attribute and filter catalogs. The document nests description nodes at
// arbitrary depth inside pages and groups, so this walks tokens rather
// than binding a fixed schema. Attribute defaults are honored only on
// the first attribute page; later pages re-flag attributes the service
// does not actually preselect.
func DecodeConfig(data []byte) ([]model.Attribute, []model.Filter, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		attrs     []model.Attribute
		filters   []model.Filter
		pagesSeen int
		pageNest  int
		curPage   = -1
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse configuration: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "AttributePage":
				if pageNest == 0 {
					curPage = pagesSeen
					pagesSeen++
				}
				pageNest++
			case "AttributeDescription":
				name := attrValue(el, "internalName")
				if name == "" {
					continue
				}
				attrs = append(attrs, model.Attribute{
					Name:        name,
					DisplayName: attrValue(el, "displayName"),
					Description: attrValue(el, "description"),
					Default:     curPage == 0 && attrValue(el, "default") == "true",
				})
			case "FilterDescription":
				f, err := decodeFilter(dec, el)
				if err != nil {
					return nil, nil, fmt.Errorf("parse configuration: %w", err)
				}
				if f.Name != "" {
					filters = append(filters, f)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "AttributePage" {
				pageNest--
				if pageNest == 0 {
					curPage = -1
				}
			}
		}
	}
	return attrs, filters, nil
}

// decodeFilter consumes the subtree of one FilterDescription. Direct
// children that carry an internalName are the filter's options.
func decodeFilter(dec *xml.Decoder, start xml.StartElement) (model.Filter, error) {
	f := model.Filter{
		Name:        attrValue(start, "internalName"),
		DisplayName: attrValue(start, "displayName"),
		Description: attrValue(start, "description"),
		Type:        attrValue(start, "type"),
		Operator:    attrValue(start, "qualifier"),
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return model.Filter{}, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if depth == 1 {
				if name := attrValue(el, "internalName"); name != "" {
					f.Options = append(f.Options, model.Option{
						Name:        name,
						DisplayName: attrValue(el, "displayName"),
						Value:       attrValue(el, "value"),
					})
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return f, nil
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
