package source

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
)

const (
	DefaultAgileBase  = "https://api.octopus.energy/v1/products/"
	DefaultCarbonBase = "https://api.carbonintensity.org.uk"

	agileTail = "/standard-unit-rates/"

	agileExport        = "AGILE-OUTGOING-19-05-13/electricity-tariffs/E-1R-AGILE-OUTGOING-19-05-13-"
	trackerElectricity = "SILVER-VAR-22-10-21/electricity-tariffs/E-1R-SILVER-VAR-22-10-21-"
	trackerGas         = "SILVER-VAR-22-10-21/gas-tariffs/G-1R-SILVER-VAR-22-10-21-"

	// carbon time parameter and response timestamps use minute precision
	carbonTimeLayout = "2006-01-02T15:04Z"
	periodLayout     = "2006-01-02T15:04:05Z"
)

// agileImports maps the configured price cap (p/kWh) to its Agile product.
// 101 is the FLEX variant of the 100p cap.
var agileImports = map[int]string{
	35:  "AGILE-18-02-21/electricity-tariffs/E-1R-AGILE-18-02-21-",
	55:  "AGILE-22-07-22/electricity-tariffs/E-1R-AGILE-22-07-22-",
	78:  "AGILE-22-08-31/electricity-tariffs/E-1R-AGILE-22-08-31-",
	100: "AGILE-VAR-22-10-19/electricity-tariffs/E-1R-AGILE-VAR-22-10-19-",
	101: "AGILE-FLEX-22-11-25/electricity-tariffs/E-1R-AGILE-FLEX-22-11-25-",
}

var agileRegions = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true, "F": true, "G": true,
	"P": true, "N": true, "J": true, "H": true, "K": true, "L": true, "M": true,
}

// carbonRegions maps DNO region letters to carbonintensity.org.uk region ids.
// Z is the national forecast.
var carbonRegions = map[string]int{
	"A": 10, "B": 9, "C": 13, "D": 6, "E": 8, "F": 4, "G": 3,
	"P": 1, "N": 2, "J": 14, "H": 12, "K": 7, "L": 11, "M": 5,
	"Z": 0,
}

func checkAgileRegion(region string) error {
	if !agileRegions[region] {
		return errors.Wrapf(common.ErrorUnknownRegion, "DNO region %q", region)
	}
	return nil
}

func agileImportURL(base, region string, agileCap int) (string, error) {
	if err := checkAgileRegion(region); err != nil {
		return "", err
	}
	product, ok := agileImports[agileCap]
	if !ok {
		return "", errors.Wrapf(common.ErrorUnknownTariff, "Agile cap of %d", agileCap)
	}
	return base + product + region + agileTail, nil
}

func agileExportURL(base, region string) (string, error) {
	if err := checkAgileRegion(region); err != nil {
		return "", err
	}
	return base + agileExport + region + agileTail, nil
}

// trackerURLs returns the electricity and gas rate URLs covering the day
// before now to two days after.
func trackerURLs(base, region string, now time.Time) (string, string, error) {
	if err := checkAgileRegion(region); err != nil {
		return "", "", err
	}
	period := fmt.Sprintf("?period_from=%s&period_to=%s",
		now.UTC().Add(-24*time.Hour).Format(periodLayout),
		now.UTC().Add(48*time.Hour).Format(periodLayout))
	return base + trackerElectricity + region + agileTail + period,
		base + trackerGas + region + agileTail + period, nil
}

func carbonURL(base, region string, now time.Time) (string, error) {
	id, ok := carbonRegions[region]
	if !ok {
		return "", errors.Wrapf(common.ErrorUnknownRegion, "DNO region %q", region)
	}
	from := now.UTC().Format(carbonTimeLayout)
	if id == 0 {
		return fmt.Sprintf("%s/intensity/%s/fw48h", base, from), nil
	}
	return fmt.Sprintf("%s/regional/intensity/%s/fw48h/regionid/%d", base, from, id), nil
}
