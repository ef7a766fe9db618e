package core

// Physical constants and unit-conversion factors, standard geophysical
// convention. These are bit-exact compatibility values, not tunables.
const (
	// Gravitational is the gravitational constant in SI (m^3 kg^-1 s^-2).
	Gravitational = 6.673e-11

	// SI2MGal converts accelerations from m/s^2 to milligal.
	SI2MGal = 1e5

	// SI2Eotvos converts gravity-gradient values from SI to Eotvos.
	SI2Eotvos = 1e9

	// CM is mu0/(4 pi), the proportionality constant of the magnetic
	// dipole field in SI.
	CM = 1e-7

	// T2NT converts magnetic fields from tesla to nanotesla.
	T2NT = 1e9
)
