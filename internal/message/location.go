package message

import (
	"fmt"
	"math"
)

// LocationRecordLen is the size of one packed location record.
const LocationRecordLen = 11

// 23301.686 = (2^23-1)/360 - eps
const latLngScale = 23301.686

const (
	latBits = 22
	lngBits = 23
	accBits = 3
	latMax  = 1<<latBits - 1
	lngMax  = 1<<lngBits - 1
	accMask = 1<<accBits - 1
)

// Accuracy is a location accuracy bucket.
type Accuracy uint8

const AccuracyOver1000 Accuracy = 7

var accuracyMeters = [8]int{10, 20, 50, 100, 200, 500, 1000, -1}

// Meters is the upper bound of the bucket, or -1 for more than 1000 m.
func (a Accuracy) Meters() int {
	if a > AccuracyOver1000 {
		return -1
	}
	return accuracyMeters[a]
}

// AccuracyForMeters picks the smallest bucket covering m.
func AccuracyForMeters(m int) Accuracy {
	if m < 0 {
		return AccuracyOver1000
	}
	for i, limit := range accuracyMeters[:AccuracyOver1000] {
		if m <= limit {
			return Accuracy(i)
		}
	}
	return AccuracyOver1000
}

type LocationRecord struct {
	Member   uint8
	Time     uint32
	Lat      float64
	Lng      float64
	Accuracy Accuracy
}

func (r LocationRecord) validate() error {
	switch {
	case math.IsNaN(r.Lat) || r.Lat < -90 || r.Lat > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidLocation, r.Lat)
	case math.IsNaN(r.Lng) || r.Lng < -180 || r.Lng > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidLocation, r.Lng)
	case r.Accuracy > AccuracyOver1000:
		return fmt.Errorf("%w: accuracy bucket %d", ErrInvalidLocation, r.Accuracy)
	}
	return nil
}

func appendLocation(dst []byte, r LocationRecord) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	lat := packCoord(r.Lat+90, latMax)
	lng := packCoord(r.Lng+180, lngMax)
	packed := lat<<(lngBits+accBits) | lng<<accBits | uint64(r.Accuracy)

	dst = append(dst, r.Member)
	dst = appendUint32(dst, r.Time)
	for shift := 40; shift >= 0; shift -= 8 {
		dst = append(dst, byte(packed>>shift))
	}
	return dst, nil
}

func decodeLocation(b []byte) LocationRecord {
	var packed uint64
	for _, c := range b[5:LocationRecordLen] {
		packed = packed<<8 | uint64(c)
	}
	return LocationRecord{
		Member:   b[0],
		Time:     readUint32(b[1:5]),
		Lat:      float64(packed>>(lngBits+accBits))/latLngScale - 90,
		Lng:      float64((packed>>accBits)&lngMax)/latLngScale - 180,
		Accuracy: Accuracy(packed & accMask),
	}
}

func packCoord(v float64, limit uint64) uint64 {
	bits := math.Round(v * latLngScale)
	if bits <= 0 {
		return 0
	}
	if bits >= float64(limit) {
		return limit
	}
	return uint64(bits)
}
