package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"time"
)

// Stream represents a currently-live broadcast. Its presence in the registry
// is the sole liveness predicate: a creator is live if and only if a Stream
// record exists for them.
type Stream struct {
	Creator      string
	Title        string
	Category     string
	IsPublic     bool
	IngestKey    string
	IngestAddr   string
	ViewCount    int64
	StartedAt    time.Time
	MediaServers []MediaServer
}

// MediaServer identifies one media-serving instance relaying this stream in a
// given region and quality tier. Addr holds the IPv4 address encoded as an
// integer for compact equality and lookup.
type MediaServer struct {
	Quality  string
	Addr     uint32
	Region   string
	MediaURL string
}

// StreamInfo is the viewer-facing projection of a stream. MediaServer is nil
// when the stream has no endpoint reachable from the requested region.
type StreamInfo struct {
	Title       string
	Creator     string
	Category    string
	MediaServer *MediaServer
}

var (
	ErrEmptyCreator   = errors.New("creator cannot be empty")
	ErrEmptyIngestKey = errors.New("ingest key cannot be empty")
	ErrTitleTooLong   = errors.New("title exceeds maximum length of 255 characters")
	ErrInvalidAddr    = errors.New("invalid IPv4 address")
)

const maxTitleLength = 255

// NewStream creates an empty live record for a just-admitted creator.
// Title and category start blank, visibility defaults to public.
func NewStream(creator, ingestAddr, ingestKey string) (*Stream, error) {
	if creator == "" {
		return nil, ErrEmptyCreator
	}
	if ingestKey == "" {
		return nil, ErrEmptyIngestKey
	}

	return &Stream{
		Creator:    creator,
		IsPublic:   true,
		IngestKey:  ingestKey,
		IngestAddr: ingestAddr,
		StartedAt:  time.Now(),
	}, nil
}

// EndpointFor returns the media server whose address matches addr, or nil.
func (s *Stream) EndpointFor(addr uint32) *MediaServer {
	for i := range s.MediaServers {
		if s.MediaServers[i].Addr == addr {
			return &s.MediaServers[i]
		}
	}
	return nil
}

// FilterRegion narrows the endpoint set to servers in the given region.
// The record itself is kept even when no endpoint survives the filter.
func (s *Stream) FilterRegion(region string) {
	filtered := s.MediaServers[:0]
	for _, ms := range s.MediaServers {
		if ms.Region == region {
			filtered = append(filtered, ms)
		}
	}
	s.MediaServers = filtered
}

// LowestQualityURL returns the media URL of the first endpoint carrying the
// given quality tier, falling back to the first endpoint of any tier.
// Returns empty string when the stream has no endpoints at all.
func (s *Stream) LowestQualityURL(quality string) string {
	for _, ms := range s.MediaServers {
		if ms.Quality == quality {
			return ms.MediaURL
		}
	}
	if len(s.MediaServers) > 0 {
		return s.MediaServers[0].MediaURL
	}
	return ""
}

// NewMediaServer builds a MediaServer from a textual IPv4 address.
func NewMediaServer(quality, ip, region, mediaURL string) (MediaServer, error) {
	addr, err := AddrToInt(ip)
	if err != nil {
		return MediaServer{}, err
	}
	return MediaServer{
		Quality:  quality,
		Addr:     addr,
		Region:   region,
		MediaURL: mediaURL,
	}, nil
}

// IP returns the endpoint address in dotted-quad form.
func (m MediaServer) IP() string {
	return IntToAddr(m.Addr)
}

// AddrToInt encodes a dotted-quad IPv4 address as a big-endian integer.
func AddrToInt(ip string) (uint32, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddr, ip)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// IntToAddr is the inverse of AddrToInt.
func IntToAddr(addr uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)
	return netip.AddrFrom4(b).String()
}

// StreamUpdate carries the creator-settable fields of a stream. Nil fields
// are left unchanged by the update.
type StreamUpdate struct {
	Title    *string
	Category *string
	IsPublic *bool
}

// Validate rejects updates that would violate field constraints.
func (u StreamUpdate) Validate() error {
	if u.Title != nil && len(*u.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
