package role

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/rolequery"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler"
)

// List returns one page of system roles.
//
// search is a URL-escaped, base64 encoded JSON object of filter keys, or "none".
// A limit of 0 returns every matching role on a single page, "none" uses the default page size.
func (s *Service) List(c fiber.Ctx) error {
	page, err := strconv.Atoi(c.Params("page"))
	if err != nil || page < 1 {
		return errors.Wrapf(roles.ErrValidation, "page %q must be a positive number", c.Params("page"))
	}

	limit := s.cfg.Roles.DefaultPageSize
	if raw := c.Params("limit"); raw != ParamNone {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return errors.Wrapf(roles.ErrValidation, "limit %q must not be negative", raw)
		}
	}

	if maxSize := s.cfg.Roles.MaxPageSize; maxSize > 0 && limit > maxSize {
		limit = maxSize
	}

	filter, err := decodeSearch(c.Params("search"))
	if err != nil {
		return err
	}

	sortBy := c.Params("sort_by")
	if sortBy == ParamNone {
		sortBy = rolequery.DefaultSort
	}

	desc, err := parseSort(c.Params("sort"))
	if err != nil {
		return err
	}

	result, err := s.query.Search(c.Context(), rolequery.Params{
		Filter: filter,
		Offset: (page - 1) * limit,
		Limit:  limit,
		SortBy: sortBy,
		Desc:   desc,
	})
	if err != nil {
		return err
	}

	numPages := int64(1)
	if limit > 0 {
		numPages = (result.TotalItems + int64(limit) - 1) / int64(limit)
	}

	return handler.OK(c, listing{
		ListingColumns:           ListingColumns,
		RecordProperties:         RecordProperties,
		EditableRecordProperties: EditableRecordProperties,
		Data:                     result.Items,
		TotalItems:               result.TotalItems,
		NumPages:                 numPages,
	}, "")
}

// EncodeSearch is the inverse of the decoding List applies to its search parameter.
func EncodeSearch(search map[string]any) (string, error) {
	if len(search) == 0 {
		return ParamNone, nil
	}

	raw, err := json.Marshal(search)
	if err != nil {
		return "", errors.Wrap(err, "encode search")
	}

	return url.PathEscape(base64.StdEncoding.EncodeToString(raw)), nil
}

func decodeSearch(param string) (rolequery.Filter, error) {
	if param == "" || param == ParamNone {
		return rolequery.Filter{}, nil
	}

	unescaped, err := url.PathUnescape(param)
	if err != nil {
		return rolequery.Filter{}, errors.Wrapf(roles.ErrInvalidFilter, "search is not url encoded: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return rolequery.Filter{}, errors.Wrapf(roles.ErrInvalidFilter, "search is not base64: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	search := map[string]any{}
	if err = dec.Decode(&search); err != nil {
		return rolequery.Filter{}, errors.Wrapf(roles.ErrInvalidFilter, "search is not a json object: %v", err)
	}

	return rolequery.ParseFilter(search)
}

func parseSort(sort string) (bool, error) {
	switch strings.ToLower(sort) {
	case "", ParamNone, "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, errors.Wrapf(roles.ErrInvalidFilter, "sort %q must be asc, desc or none", sort)
	}
}
