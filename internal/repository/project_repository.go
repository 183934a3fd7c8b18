package repository

import (
	"context"

	"kpbu-assistant/internal/model"
)

// ProjectRepository is the read side of the project catalog.
type ProjectRepository interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
}

// StaticProjectRepository serves a fixed, process-lifetime catalog.
// ListProjects returns copies, so callers cannot mutate the shared data.
type StaticProjectRepository struct {
	projects []model.Project
}

func NewStaticProjectRepository(projects []model.Project) *StaticProjectRepository {
	return &StaticProjectRepository{projects: cloneProjects(projects)}
}

// NewDefaultProjectRepository returns the built-in KPBU catalog.
func NewDefaultProjectRepository() *StaticProjectRepository {
	return NewStaticProjectRepository(DefaultProjects())
}

func (r *StaticProjectRepository) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneProjects(r.projects), nil
}

func cloneProjects(in []model.Project) []model.Project {
	out := make([]model.Project, len(in))
	for i, p := range in {
		p.Tags = append([]string(nil), p.Tags...)
		out[i] = p
	}
	return out
}

// DefaultProjects is the catalog of KPBU projects offered to investors.
func DefaultProjects() []model.Project {
	return []model.Project{
		{
			ID:                   1,
			Name:                 "Pembangunan Jalan Tol Jakarta-Bandung",
			Sector:               "Transportation",
			InvestmentRange:      model.InvestmentRange{Min: 5000, Max: 10000},
			RiskLevel:            model.LevelMedium,
			Duration:             36,
			Location:             "Jakarta-Bandung",
			Description:          "Proyek pembangunan jalan tol yang menghubungkan Jakarta dan Bandung dengan teknologi terkini.",
			Tags:                 []string{"infrastructure", "transportation", "toll-road"},
			EstimatedROI:         12.5,
			GovernmentSupport:    model.LevelHigh,
			MarketDemand:         model.LevelHigh,
			RegulatoryComplexity: model.LevelMedium,
		},
		{
			ID:                   2,
			Name:                 "Pembangunan Rumah Sakit Umum Daerah",
			Sector:               "Healthcare",
			InvestmentRange:      model.InvestmentRange{Min: 1000, Max: 5000},
			RiskLevel:            model.LevelLow,
			Duration:             24,
			Location:             "Surabaya",
			Description:          "Pembangunan dan operasional rumah sakit umum daerah dengan fasilitas lengkap.",
			Tags:                 []string{"healthcare", "hospital", "public-service"},
			EstimatedROI:         8.5,
			GovernmentSupport:    model.LevelHigh,
			MarketDemand:         model.LevelHigh,
			RegulatoryComplexity: model.LevelLow,
		},
		{
			ID:                   3,
			Name:                 "Pembangunan Pelabuhan Logistik",
			Sector:               "Logistics",
			InvestmentRange:      model.InvestmentRange{Min: 10000, Max: 20000},
			RiskLevel:            model.LevelHigh,
			Duration:             48,
			Location:             "Batam",
			Description:          "Pengembangan pelabuhan logistik modern untuk mendukung perdagangan internasional.",
			Tags:                 []string{"logistics", "port", "international-trade"},
			EstimatedROI:         15.2,
			GovernmentSupport:    model.LevelMedium,
			MarketDemand:         model.LevelMedium,
			RegulatoryComplexity: model.LevelHigh,
		},
		{
			ID:                   4,
			Name:                 "Pembangunan Sistem Pengolahan Air Bersih",
			Sector:               "Water Management",
			InvestmentRange:      model.InvestmentRange{Min: 2000, Max: 5000},
			RiskLevel:            model.LevelLow,
			Duration:             30,
			Location:             "Medan",
			Description:          "Sistem pengolahan air bersih untuk memenuhi kebutuhan masyarakat kota Medan.",
			Tags:                 []string{"water-treatment", "utilities", "public-service"},
			EstimatedROI:         9.8,
			GovernmentSupport:    model.LevelHigh,
			MarketDemand:         model.LevelHigh,
			RegulatoryComplexity: model.LevelMedium,
		},
		{
			ID:                   5,
			Name:                 "Pembangunan Pusat Energi Terbarukan",
			Sector:               "Energy",
			InvestmentRange:      model.InvestmentRange{Min: 15000, Max: 30000},
			RiskLevel:            model.LevelMedium,
			Duration:             60,
			Location:             "Bali",
			Description:          "Pembangunan pusat energi terbarukan dengan teknologi solar dan wind power.",
			Tags:                 []string{"renewable-energy", "solar", "wind-power"},
			EstimatedROI:         18.5,
			GovernmentSupport:    model.LevelMedium,
			MarketDemand:         model.LevelMedium,
			RegulatoryComplexity: model.LevelMedium,
		},
		{
			ID:                   6,
			Name:                 "Pembangunan Sekolah Tinggi Vokasi",
			Sector:               "Education",
			InvestmentRange:      model.InvestmentRange{Min: 500, Max: 1000},
			RiskLevel:            model.LevelLow,
			Duration:             18,
			Location:             "Yogyakarta",
			Description:          "Pembangunan sekolah tinggi vokasi dengan fokus pada teknologi dan industri.",
			Tags:                 []string{"education", "vocational", "technology"},
			EstimatedROI:         7.2,
			GovernmentSupport:    model.LevelHigh,
			MarketDemand:         model.LevelMedium,
			RegulatoryComplexity: model.LevelLow,
		},
		{
			ID:                   7,
			Name:                 "Pembangunan Smart City Infrastructure",
			Sector:               "Technology",
			InvestmentRange:      model.InvestmentRange{Min: 8000, Max: 15000},
			RiskLevel:            model.LevelMedium,
			Duration:             42,
			Location:             "Semarang",
			Description:          "Pengembangan infrastruktur smart city dengan IoT dan sistem terintegrasi.",
			Tags:                 []string{"smart-city", "iot", "technology"},
			EstimatedROI:         14.8,
			GovernmentSupport:    model.LevelMedium,
			MarketDemand:         model.LevelHigh,
			RegulatoryComplexity: model.LevelHigh,
		},
		{
			ID:                   8,
			Name:                 "Pembangunan Fasilitas Olahraga Nasional",
			Sector:               "Sports",
			InvestmentRange:      model.InvestmentRange{Min: 3000, Max: 8000},
			RiskLevel:            model.LevelMedium,
			Duration:             36,
			Location:             "Jakarta",
			Description:          "Pembangunan kompleks fasilitas olahraga untuk event nasional dan internasional.",
			Tags:                 []string{"sports", "facility", "national-event"},
			EstimatedROI:         10.5,
			GovernmentSupport:    model.LevelHigh,
			MarketDemand:         model.LevelMedium,
			RegulatoryComplexity: model.LevelMedium,
		},
	}
}
