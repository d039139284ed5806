package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/maxminddb-golang"
)

// CountryResolver maps a client IP to an ISO 3166-1 alpha-2 code.
type CountryResolver interface {
	CountryCode(ip string) (string, error)
	Close() error
}

type countryRecord struct {
	Country struct {
		IsoCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		IsoCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

// Reader looks up countries in a GeoLite2/GeoIP2 Country or City database.
type Reader struct {
	db *maxminddb.Reader
}

// Open memory-maps the database at path.
func Open(path string) (*Reader, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return newReader(db)
}

func FromBytes(b []byte) (*Reader, error) {
	db, err := maxminddb.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("load geoip database: %w", err)
	}
	return newReader(db)
}

func newReader(db *maxminddb.Reader) (*Reader, error) {
	dbType := db.Metadata.DatabaseType
	if !strings.Contains(dbType, "Country") && !strings.Contains(dbType, "City") {
		_ = db.Close()
		return nil, fmt.Errorf("geoip database type %q has no country data", dbType)
	}
	return &Reader{db: db}, nil
}

// CountryCode returns "" when the address is not in the database.
func (r *Reader) CountryCode(ip string) (string, error) {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return "", fmt.Errorf("invalid ip address %q", ip)
	}
	var rec countryRecord
	if err := r.db.Lookup(addr, &rec); err != nil {
		return "", fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	if rec.Country.IsoCode != "" {
		return rec.Country.IsoCode, nil
	}
	return rec.RegisteredCountry.IsoCode, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// NopResolver is used when no database is configured.
type NopResolver struct{}

func (NopResolver) CountryCode(string) (string, error) { return "", nil }
func (NopResolver) Close() error                       { return nil }
