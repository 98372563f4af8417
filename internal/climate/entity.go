// AngelaMos | 2026
// entity.go

package climate

type SeaLevelRise struct {
	ID      int64    `db:"id"                     json:"id"`
	Entity  string   `db:"entity"                 json:"entity"`
	Code    *string  `db:"code"                   json:"code,omitempty"`
	Day     string   `db:"day"                    json:"day"`
	Average *float64 `db:"sea_level_rise_average" json:"sea_level_rise_average,omitempty"`
}

type TemperatureAnomaly struct {
	ID      int64   `db:"id"                  json:"id"`
	Entity  string  `db:"entity"              json:"entity"`
	Code    *string `db:"code"                json:"code,omitempty"`
	Day     string  `db:"day"                 json:"day"`
	Anomaly float64 `db:"temperature_anomaly" json:"temperature_anomaly"`
}

type CO2Concentration struct {
	ID      int64    `db:"id"                         json:"id"`
	Entity  string   `db:"entity"                     json:"entity"`
	Code    *string  `db:"code"                       json:"code,omitempty"`
	Day     string   `db:"day"                        json:"day"`
	Average *float64 `db:"average_co2_concentrations" json:"average_co2_concentrations,omitempty"`
	Trend   *float64 `db:"trend_co2_concentrations"   json:"trend_co2_concentrations,omitempty"`
}
