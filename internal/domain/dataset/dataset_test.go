package dataset

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func f(v float64) *float64 { return &v }

func validSnapshot() Snapshot {
	return Snapshot{
		Version: "2024.1",
		RoleRates: []RoleRate{
			{Role: "Entry Level", Geography: GeoTotal, LQ: f(24000), Median: f(26357), UQ: f(28000)},
			{Role: "Entry Level", Geography: GeoOutsideLondon, Average: f(28398)},
		},
		Organisations: []Organisation{
			{ID: "org-1", Name: "Org One", Region: RegionLondon, Headcount: 10, TurnoverGBPm: 2.5},
		},
		KPIs: []KPI{{Year: "2023/24"}},
	}
}

func TestParseEnums(t *testing.T) {
	Convey("Given geography and region labels", t, func() {
		Convey("When parsing display labels and compact keys", func() {
			g1, err1 := ParseGeography("Inside London")
			g2, err2 := ParseGeography("insidelondon")
			r, err3 := ParseRegion("outside london")

			Convey("Then both forms should resolve", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(g1, ShouldEqual, GeoInsideLondon)
				So(g2, ShouldEqual, GeoInsideLondon)
				So(r, ShouldEqual, RegionOutsideLondon)
			})
		})

		Convey("When parsing unknown values", func() {
			_, gErr := ParseGeography("Mars")
			_, rErr := ParseRegion("Wales")

			Convey("Then the sentinel errors should be returned", func() {
				So(errors.Is(gErr, ErrUnknownGeography), ShouldBeTrue)
				So(errors.Is(rErr, ErrUnknownRegion), ShouldBeTrue)
			})
		})
	})
}

func TestWorkingWeekYAML(t *testing.T) {
	Convey("Given organisations with both working week forms", t, func() {
		doc := `
- id: a
  name: A
  region: London
  headcount: 5
  turnover_gbp_m: 1
  working_week: 37.5
- id: b
  name: B
  region: Both
  headcount: 5
  turnover_gbp_m: 1
  working_week:
    note: varies by contract
    range: [35, 37.5]
`
		var orgs []Organisation
		err := yaml.Unmarshal([]byte(doc), &orgs)

		Convey("Then both should decode", func() {
			So(err, ShouldBeNil)
			So(orgs, ShouldHaveLength, 2)
			So(orgs[0].WorkingWeek.IsRange(), ShouldBeFalse)
			So(orgs[0].WorkingWeek.String(), ShouldEqual, "37.5")
			So(orgs[1].WorkingWeek.IsRange(), ShouldBeTrue)
			So(orgs[1].WorkingWeek.String(), ShouldEqual, "35–37.5 (varies by contract)")
			So(orgs[1].Region, ShouldEqual, RegionBoth)
		})
	})

	Convey("Given an organisation with an unknown region", t, func() {
		var orgs []Organisation
		err := yaml.Unmarshal([]byte("- id: a\n  region: Mars\n"), &orgs)

		Convey("Then decoding should fail", func() {
			So(errors.Is(err, ErrUnknownRegion), ShouldBeTrue)
		})
	})
}

func TestSnapshotValidate(t *testing.T) {
	Convey("Given a valid snapshot", t, func() {
		s := validSnapshot()

		Convey("Then validation should pass", func() {
			So(s.Validate(), ShouldBeNil)
			So(s.OrgIDs(), ShouldResemble, []string{"org-1"})
		})

		Convey("When a role and geography pair is duplicated", func() {
			s.RoleRates = append(s.RoleRates, RoleRate{Role: "Entry Level", Geography: GeoTotal})

			Convey("Then validation should fail", func() {
				So(errors.Is(s.Validate(), ErrInvalidSnapshot), ShouldBeTrue)
			})
		})

		Convey("When quartiles are partially present", func() {
			s.RoleRates[1].Median = f(27000)

			Convey("Then validation should fail", func() {
				So(errors.Is(s.Validate(), ErrInvalidSnapshot), ShouldBeTrue)
			})
		})

		Convey("When quartiles are out of order", func() {
			s.RoleRates[0].LQ = f(30000)

			Convey("Then validation should fail", func() {
				So(s.Validate(), ShouldNotBeNil)
			})
		})

		Convey("When an organisation has no headcount", func() {
			s.Organisations[0].Headcount = 0

			Convey("Then validation should fail", func() {
				So(errors.Is(s.Validate(), ErrInvalidSnapshot), ShouldBeTrue)
			})
		})

		Convey("When listing role categories", func() {
			s.RoleRates[0].Category = "Summary"
			s.RoleRates[1].Category = "Summary"
			s.RoleRates = append(s.RoleRates,
				RoleRate{Role: "Cook/Chef", Category: "Care & Support", Geography: GeoTotal},
				RoleRate{Role: "Uncategorised", Geography: GeoTotal},
			)

			Convey("Then they should be distinct in first-seen order", func() {
				So(s.Categories(), ShouldResemble, []string{"Summary", "Care & Support"})
			})
		})

		Convey("When a KPI year repeats", func() {
			s.KPIs = append(s.KPIs, KPI{Year: "2023/24"})

			Convey("Then validation should fail", func() {
				So(errors.Is(s.Validate(), ErrInvalidSnapshot), ShouldBeTrue)
			})
		})
	})
}
