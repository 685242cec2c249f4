package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Static informational payloads served to the marketing pages. Mock data,
// carried as-is until real providers are wired.

type ForecastDay struct {
	Day       string `json:"day"`
	High      int    `json:"high"`
	Low       int    `json:"low"`
	Condition string `json:"condition"`
}

type WeatherData struct {
	Location    string        `json:"location"`
	Temperature int           `json:"temperature"`
	Condition   string        `json:"condition"`
	Humidity    int           `json:"humidity"`
	WindSpeed   int           `json:"windSpeed"`
	Forecast    []ForecastDay `json:"forecast"`
}

type MarketPrice struct {
	ID        string  `json:"id"`
	Commodity string  `json:"commodity"`
	Price     int     `json:"price"`
	Unit      string  `json:"unit"`
	Market    string  `json:"market"`
	Change    float64 `json:"change"`
	UpdatedAt string  `json:"updatedAt"`
}

type CropRecommendation struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ProfitPotential int    `json:"profitPotential"`
	MarketDemand    string `json:"marketDemand"`
	Season          string `json:"season"`
	Investment      string `json:"investment"`
	Description     string `json:"description"`
}

type InfoHandler struct{}

func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

func (ih *InfoHandler) GetWeather(c *gin.Context) {
	location := c.Param("location")
	if location == "" {
		location = "Delhi"
	}
	RespondOK(c, WeatherData{
		Location:    location,
		Temperature: 28,
		Condition:   "Partly Cloudy",
		Humidity:    65,
		WindSpeed:   12,
		Forecast: []ForecastDay{
			{Day: "Mon", High: 30, Low: 20, Condition: "Sunny"},
			{Day: "Tue", High: 29, Low: 19, Condition: "Partly Cloudy"},
			{Day: "Wed", High: 27, Low: 18, Condition: "Cloudy"},
			{Day: "Thu", High: 26, Low: 17, Condition: "Rain"},
			{Day: "Fri", High: 28, Low: 19, Condition: "Sunny"},
		},
	})
}

func (ih *InfoHandler) GetMarketPrices(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	RespondOK(c, []MarketPrice{
		{ID: "1", Commodity: "Wheat", Price: 2200, Unit: "quintal", Market: "Delhi Mandi", Change: 2.5, UpdatedAt: now},
		{ID: "2", Commodity: "Rice (Basmati)", Price: 4500, Unit: "quintal", Market: "Karnal Mandi", Change: -1.2, UpdatedAt: now},
		{ID: "3", Commodity: "Maize", Price: 1800, Unit: "quintal", Market: "Mumbai Mandi", Change: 3.8, UpdatedAt: now},
		{ID: "4", Commodity: "Cotton", Price: 6200, Unit: "quintal", Market: "Gujarat Mandi", Change: 1.5, UpdatedAt: now},
		{ID: "5", Commodity: "Mustard", Price: 5400, Unit: "quintal", Market: "Rajasthan Mandi", Change: -0.8, UpdatedAt: now},
	})
}

func (ih *InfoHandler) GetCrops(c *gin.Context) {
	RespondOK(c, []CropRecommendation{
		{
			ID: "1", Name: "Wheat", ProfitPotential: 18, MarketDemand: "Medium",
			Season: "Rabi (November-April)", Investment: "₹22,000/acre",
			Description: "Stable market with consistent demand throughout the year",
		},
		{
			ID: "2", Name: "Mustard", ProfitPotential: 24, MarketDemand: "Medium",
			Season: "Rabi (October-March)", Investment: "₹18,000/acre",
			Description: "Good profit margins with growing demand for mustard oil",
		},
		{
			ID: "3", Name: "Maize", ProfitPotential: 20, MarketDemand: "High",
			Season: "Kharif (June-September)", Investment: "₹24,000/acre",
			Description: "High demand from poultry and food processing industries",
		},
	})
}
