package navigate

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"
)

const talker = "GP"

// RMC formats fix as a recommended minimum position sentence.
func RMC(fix Fix) string {
	t := fix.When.UTC()
	lat, ns := latitude(fix.Lat)
	lon, ew := longitude(fix.Lon)
	body := fmt.Sprintf("%sRMC,%s,A,%s,%s,%s,%s,%.1f,%.1f,%s,,,A",
		talker, t.Format("150405.00"), lat, ns, lon, ew, fix.Speed, fix.Course, t.Format("020106"))
	return sentence(body)
}

// GGA formats fix as a fix data sentence with a nominal satellite count
// and dilution.
func GGA(fix Fix) string {
	t := fix.When.UTC()
	lat, ns := latitude(fix.Lat)
	lon, ew := longitude(fix.Lon)
	body := fmt.Sprintf("%sGGA,%s,%s,%s,%s,%s,1,08,1.0,0.0,M,0.0,M,,",
		talker, t.Format("150405.00"), lat, ns, lon, ew)
	return sentence(body)
}

func sentence(body string) string {
	return fmt.Sprintf("$%s*%s", body, nmea.Checksum(body))
}

func latitude(v float64) (string, string) {
	hemi := "N"
	if v < 0 {
		hemi = "S"
		v = -v
	}
	deg, mins := degMin(v)
	return fmt.Sprintf("%02d%07.4f", deg, mins), hemi
}

func longitude(v float64) (string, string) {
	hemi := "E"
	if v < 0 {
		hemi = "W"
		v = -v
	}
	deg, mins := degMin(v)
	return fmt.Sprintf("%03d%07.4f", deg, mins), hemi
}

func degMin(v float64) (int, float64) {
	deg := math.Floor(v)
	mins := (v - deg) * 60
	// Rounding to four decimals could produce 60.0000 minutes.
	if math.Round(mins*1e4) >= 60e4 {
		deg++
		mins = 0
	}
	return int(deg), mins
}
