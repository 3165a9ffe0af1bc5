package goes

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		path    string
		env     Environment
		product Product
		channel Channel
		sector  Sector
		mode    Mode
		sat     Satellite
	}{
		{
			"/OR_ABI-L1b-RadF-M6C13_G17_s20210481330321_e20210481339399_c20210481339454.nc",
			OperationalRealTime, Radiances, CleanIR, FullDisk, 6, GOES17,
		},
		{
			"/OR_ABI-L2-CMIPM1-M6C02_G18_s20223200122250_e20223200122308_c20223200122372.jpg",
			OperationalRealTime, CloudMoistureImagery, Red, Mesoscale1, 6, GOES18,
		},
		{
			"/img/CUSTOMLUT/OR_ABI-L2-CMIPM1-M6CFC_G18_s20223200122250_e20223200122308_c20223200122372.jpg",
			OperationalRealTime, CloudMoistureImagery, FullColor, Mesoscale1, 6, GOES18,
		},
		{
			"img/fc/OR_ABI-L2-CMIPM1-M6CFC_G18_s20223200122250_e20223200122308_c20223200122372.jpg",
			OperationalRealTime, CloudMoistureImagery, FullColorCountries, Mesoscale1, 6, GOES18,
		},
		{
			"IT_ABI-L2-DMWVC-M3_G16_s20190010000000_e20190010005000_c20190010006000.nc",
			TestData, DerivedMotionWindsBand8, NoChannel, CONUS, 3, GOES16,
		},
		{
			"OR_ABI-L2-DMWM2-M4C14_G19_s20251231200000_e20251231201000_c20251231202000.nc",
			OperationalRealTime, DerivedMotionWinds, IR, Mesoscale2, 4, GOES19,
		},
		{
			"OR_ABI-L2-MCMIPC-M6_G16_s20223200121173_e20223200123546_c20223200124068.nc",
			OperationalRealTime, MultibandCloudMoistureImagery, NoChannel, CONUS, 6, GOES16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fn, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if fn.Environment != tt.env {
				t.Errorf("Environment = %v, want %v", fn.Environment, tt.env)
			}
			if fn.ShortName.Product != tt.product {
				t.Errorf("Product = %v, want %v", fn.ShortName.Product, tt.product)
			}
			if fn.ShortName.Channel != tt.channel {
				t.Errorf("Channel = %v, want %v", fn.ShortName.Channel, tt.channel)
			}
			if fn.ShortName.Sector != tt.sector {
				t.Errorf("Sector = %v, want %v", fn.ShortName.Sector, tt.sector)
			}
			if fn.ShortName.Mode != tt.mode {
				t.Errorf("Mode = %v, want %v", fn.ShortName.Mode, tt.mode)
			}
			if fn.Satellite != tt.sat {
				t.Errorf("Satellite = %v, want %v", fn.Satellite, tt.sat)
			}
		})
	}
}

func TestTimestamps(t *testing.T) {
	fn, err := Parse("OR_ABI-L1b-RadF-M6C13_G17_s20210481330321_e20210481339399_c20210481339454.nc")
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2021, time.February, 17, 13, 30, 32, 100_000_000, time.UTC)
	if !fn.Start.Equal(start) {
		t.Errorf("Start = %v, want %v", fn.Start, start)
	}
	created := time.Date(2021, time.February, 17, 13, 39, 45, 400_000_000, time.UTC)
	if !fn.Created.Equal(created) {
		t.Errorf("Created = %v, want %v", fn.Created, created)
	}
	if !fn.End.After(fn.Start) {
		t.Errorf("End %v is not after Start %v", fn.End, fn.Start)
	}
}

func TestShortNameString(t *testing.T) {
	for _, name := range []string{
		"OR_ABI-L1b-RadF-M6C13_G17_s20210481330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L2-MCMIPC-M6_G16_s20223200121173_e20223200123546_c20223200124068.nc",
	} {
		fn, err := Parse(name)
		if err != nil {
			t.Fatal(err)
		}
		want := name[3:len(name)-len("_G16_s20223200121173_e20223200123546_c20223200124068.nc")]
		if got := fn.ShortName.String(); got != want {
			t.Errorf("ShortName.String() = %q, want %q", got, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"XX_ABI-L1b-RadF-M6C13_G17_s20210481330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L1b-RadF-M6C17_G17_s20210481330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L2-XYZF-M6_G17_s20210481330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L1b-RadF-M5C13_G17_s20210481330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L1b-RadF-M6C13_G15_s20210481330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L1b-RadF-M6C13_G17_s20213671330321_e20210481339399_c20210481339454.nc",
		"OR_ABI-L1b-RadF-M6C13_G17_s20210481330321",
	}
	for _, name := range tests {
		if _, err := Parse(name); !errors.Is(err, ErrInvalidFileName) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidFileName", name, err)
		}
	}
}
