package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jelajah/internal/domain"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/ws"
	"jelajah/pkg/gemini"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// PlannerService asks the completion service for itinerary suggestions
// and descriptive copy. Suggestions are matched by name against the
// cluster catalog; anything the model invents that is not in the
// catalog is dropped. The model never drives authorization or grant
// state.
type PlannerService struct {
	gem         gemini.Client
	clusterRepo *repository.ClusterRepository
	itinRepo    *repository.ItineraryRepository
	feed        *ws.Changefeed
}

func NewPlannerService(gem gemini.Client, clusterRepo *repository.ClusterRepository, itinRepo *repository.ItineraryRepository, feed *ws.Changefeed) *PlannerService {
	return &PlannerService{gem: gem, clusterRepo: clusterRepo, itinRepo: itinRepo, feed: feed}
}

// PlanInput describes the trip the visitor wants.
type PlanInput struct {
	Title     string
	Days      int
	Interests []string
	District  string
}

type suggestedPlan struct {
	Summary string `json:"summary"`
	Days    []struct {
		Day      int      `json:"day"`
		Clusters []string `json:"clusters"`
	} `json:"days"`
}

var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"days": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"day":      {Type: genai.TypeInteger},
					"clusters": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"day", "clusters"},
			},
		},
	},
	Required: []string{"days"},
}

// SuggestItinerary builds a draft itinerary from model suggestions.
// The created itinerary is a normal one; the user edits it manually
// afterwards like any other.
func (s *PlannerService) SuggestItinerary(ctx context.Context, userID uint, in PlanInput) (*models.Itinerary, error) {
	if in.Days < 1 || in.Days > 14 {
		return nil, fmt.Errorf("days must be between 1 and 14: %w", domain.ErrValidation)
	}
	if s.gem == nil {
		return nil, fmt.Errorf("trip planner is not configured: %w", domain.ErrUpstream)
	}
	clusters, _, err := s.clusterRepo.List("", in.District, "", 200, 0)
	if err != nil {
		return nil, err
	}
	if len(clusters) == 0 {
		return nil, fmt.Errorf("no clusters available to plan with: %w", domain.ErrValidation)
	}

	var catalog strings.Builder
	for _, c := range clusters {
		fmt.Fprintf(&catalog, "- %s (%s, %s)\n", c.Name, c.Category, c.District)
	}
	prompt := fmt.Sprintf(
		"You are a local trip planner. Plan a %d-day visit using ONLY these places:\n%s\nVisitor interests: %s.\nReturn JSON with a short summary and, per day, the place names to visit (2-4 per day). Use the exact names from the list.",
		in.Days, catalog.String(), strings.Join(in.Interests, ", "))

	raw, err := s.gem.GenerateJSON(ctx, prompt, planSchema)
	if err != nil {
		return nil, fmt.Errorf("itinerary suggestion failed: %w", domain.ErrUpstream)
	}
	var plan suggestedPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("itinerary suggestion was not valid JSON: %w", domain.ErrUpstream)
	}

	byName := make(map[string]*models.Cluster, len(clusters))
	for i := range clusters {
		byName[strings.ToLower(clusters[i].Name)] = &clusters[i]
	}

	title := in.Title
	if title == "" {
		title = fmt.Sprintf("%d-day trip", in.Days)
	}
	it := &models.Itinerary{
		UserID: userID,
		Title:  title,
		Days:   in.Days,
		Notes:  plan.Summary,
	}
	if err := s.itinRepo.Create(it); err != nil {
		return nil, err
	}
	for _, d := range plan.Days {
		if d.Day < 1 || d.Day > in.Days {
			continue
		}
		pos := 0
		for _, name := range d.Clusters {
			cluster, ok := byName[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				zap.S().Debugw("planner: dropping unknown cluster suggestion", "name", name)
				continue
			}
			pos++
			item := &models.ItineraryItem{
				ItineraryID: it.ID,
				Day:         d.Day,
				ClusterID:   cluster.ID,
				Position:    pos,
			}
			if err := s.itinRepo.AddItem(item); err != nil {
				// duplicate suggestion for the same day; skip it
				if !errors.Is(err, domain.ErrConflict) {
					zap.S().Warnw("planner: add item failed", "cluster", cluster.Name, "error", err)
				}
			}
		}
	}
	if s.feed != nil {
		s.feed.TableChanged("itineraries")
	}
	return s.itinRepo.GetByID(it.ID)
}

// DescribeCluster generates descriptive copy for a cluster and stores
// it. Allowed for elevated roles and the owning tourism player.
func (s *PlannerService) DescribeCluster(ctx context.Context, callerID uint, callerRole string, clusterID uint) (string, error) {
	cluster, err := s.clusterRepo.GetByID(clusterID)
	if err != nil {
		return "", err
	}
	if !domain.IsElevated(callerRole) && (cluster.OwnerID == nil || *cluster.OwnerID != callerID) {
		return "", fmt.Errorf("only staff or the owner may generate copy: %w", domain.ErrPermissionDenied)
	}
	if s.gem == nil {
		return "", fmt.Errorf("copy generation is not configured: %w", domain.ErrUpstream)
	}
	prompt := fmt.Sprintf(
		"Write two inviting sentences for a tourism listing. Place: %s. Category: %s. District: %s. No hashtags, no emoji.",
		cluster.Name, cluster.Category, cluster.District)
	text, err := s.gem.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("copy generation failed: %w", domain.ErrUpstream)
	}
	cluster.Description = strings.TrimSpace(text)
	if err := s.clusterRepo.Update(cluster); err != nil {
		return "", err
	}
	if s.feed != nil {
		s.feed.TableChanged("clusters")
	}
	return cluster.Description, nil
}
