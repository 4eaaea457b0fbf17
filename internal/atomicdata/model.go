// model.go defines the persisted schema of the atomic reference store.
package atomicdata

// SpectralLine is one raw transition row as imported from the tabular line
// store. Numeric columns are kept as text because upstream exports carry
// annotation characters ("1.23e8?", "[4]") that the query path strips.
type SpectralLine struct {
	ID           uint   `gorm:"primaryKey"`
	Element      string `gorm:"index:idx_lines_species"`
	SpNum        int    `gorm:"index:idx_lines_species;column:sp_num"`
	WavelengthNM string `gorm:"column:ritz_wl_air_nm"`
	Aki          string `gorm:"column:aki"`
	Ek           string `gorm:"column:ek_ev"`
	Ei           string `gorm:"column:ei_ev"`
	Gi           string `gorm:"column:g_i"`
	Gk           string `gorm:"column:g_k"`
	Acc          string `gorm:"column:acc"`
}

// IonizationEnergy maps a spectroscopic species name ("Si I", "Si II") to its
// ionization energy.
type IonizationEnergy struct {
	ID          uint    `gorm:"primaryKey"`
	SpeciesName string  `gorm:"uniqueIndex"`
	EnergyEV    float64 `gorm:"column:energy_ev"`
}
