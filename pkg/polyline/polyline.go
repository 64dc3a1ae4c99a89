// Package polyline implements the Google encoded-polyline format at 1e-5
// precision, the geometry encoding OSRM returns for overview paths.
package polyline

import (
	"errors"
	"math"
)

const precision = 1e5

var ErrTruncated = errors.New("polyline: truncated input")

// Decode parses an encoded polyline into (lat, lon) pairs.
func Decode(encoded string) ([][2]float64, error) {
	var points [][2]float64
	var lat, lon int64

	index := 0
	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next

		dLon, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dLat
		lon += dLon
		points = append(points, [2]float64{
			float64(lat) / precision,
			float64(lon) / precision,
		})
	}

	return points, nil
}

// Encode renders (lat, lon) pairs into the compact polyline form.
func Encode(points [][2]float64) string {
	var out []byte
	var prevLat, prevLon int64

	for _, point := range points {
		lat := int64(math.Round(point[0] * precision))
		lon := int64(math.Round(point[1] * precision))
		out = encodeValue(out, lat-prevLat)
		out = encodeValue(out, lon-prevLon)
		prevLat = lat
		prevLon = lon
	}

	return string(out)
}

func decodeValue(encoded string, index int) (int64, int, error) {
	var result int64
	var shift uint

	for {
		if index >= len(encoded) {
			return 0, 0, ErrTruncated
		}
		chunk := int64(encoded[index]) - 63
		if chunk < 0 {
			return 0, 0, errors.New("polyline: invalid character")
		}
		index++
		result |= (chunk & 0x1f) << shift
		if chunk < 0x20 {
			break
		}
		shift += 5
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

func encodeValue(out []byte, value int64) []byte {
	value <<= 1
	if value < 0 {
		value = ^value
	}
	for value >= 0x20 {
		out = append(out, byte(0x20|(value&0x1f))+63)
		value >>= 5
	}
	return append(out, byte(value)+63)
}
