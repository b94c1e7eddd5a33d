package provisioner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/config"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeProvider is an in-memory stand-in for the call-AI provider API.
type fakeProvider struct {
	mu             sync.Mutex
	assistants     map[string]vapi.AssistantConfig
	phoneNumbers   []vapi.PhoneNumberResource
	failAssistants bool
	createCalls    int
	updateCalls    int
	phonePatches   int
	phoneCreates   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{assistants: make(map[string]vapi.AssistantConfig)}
}

func (p *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /assistant", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.failAssistants {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		var cfg vapi.AssistantConfig
		json.NewDecoder(r.Body).Decode(&cfg)
		p.createCalls++
		id := "assistant-remote-1"
		p.assistants[id] = cfg
		json.NewEncoder(w).Encode(vapi.AssistantResource{ID: id, Name: cfg.Name})
	})
	mux.HandleFunc("PATCH /assistant/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		var cfg vapi.AssistantConfig
		json.NewDecoder(r.Body).Decode(&cfg)
		p.updateCalls++
		id := r.PathValue("id")
		p.assistants[id] = cfg
		json.NewEncoder(w).Encode(vapi.AssistantResource{ID: id, Name: cfg.Name})
	})
	mux.HandleFunc("GET /phone-number", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		json.NewEncoder(w).Encode(p.phoneNumbers)
	})
	mux.HandleFunc("POST /phone-number", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		var cfg vapi.PhoneNumberConfig
		json.NewDecoder(r.Body).Decode(&cfg)
		p.phoneCreates++
		resource := vapi.PhoneNumberResource{ID: "phone-remote-1", Number: cfg.Number, AssistantID: cfg.AssistantID}
		p.phoneNumbers = append(p.phoneNumbers, resource)
		json.NewEncoder(w).Encode(resource)
	})
	mux.HandleFunc("PATCH /phone-number/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		var patch map[string]string
		json.NewDecoder(r.Body).Decode(&patch)
		p.phonePatches++
		id := r.PathValue("id")
		for i := range p.phoneNumbers {
			if p.phoneNumbers[i].ID == id {
				p.phoneNumbers[i].AssistantID = patch["assistantId"]
				json.NewEncoder(w).Encode(p.phoneNumbers[i])
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	return mux
}

func setupProvisioner(t *testing.T) (*Service, *fakeProvider, *repository.DirectoryRepository, *repository.ProfileRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.PhoneNumber{}, &domain.Assistant{}, &domain.BusinessProfile{}))

	provider := newFakeProvider()
	server := httptest.NewServer(provider.handler())
	t.Cleanup(server.Close)

	directory := repository.NewDirectoryRepository(db)
	profiles := repository.NewProfileRepository(db)
	cfg := &config.AppConfig{
		PublicBaseURL:    "https://voice.example.com",
		VapiBaseURL:      server.URL,
		TwilioAccountSID: "ACxxxx",
		TwilioAuthToken:  "secret",
	}
	client := vapi.NewClient(server.URL, "test-key", 5*time.Second)

	return NewService(client, directory, profiles, cfg), provider, directory, profiles
}

func TestUpsertAssistantCreatesRemoteAndBinding(t *testing.T) {
	svc, provider, directory, profiles := setupProvisioner(t)
	ctx := context.Background()

	assistant, err := svc.UpsertAssistant(ctx, domain.AssistantSetupRequest{
		UserID:  "user-1",
		VoiceID: "21m00Tcm4TlvDq8ikWAM",
		BusinessData: domain.BusinessData{
			BusinessName: "Bright Smiles Dental",
			Greeting:     "Thanks for calling Bright Smiles!",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "assistant-remote-1", assistant.RemoteAssistantID)

	profile, err := profiles.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Bright Smiles Dental", profile.BusinessData.BusinessName)

	userID, err := directory.ResolveUserByRemoteAssistantID(ctx, "assistant-remote-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	remote := provider.assistants["assistant-remote-1"]
	assert.Equal(t, "Thanks for calling Bright Smiles!", remote.FirstMessage)
	require.NotNil(t, remote.Model)
	require.Len(t, remote.Model.Messages, 1)
	assert.Contains(t, remote.Model.Messages[0].Content, "Bright Smiles Dental")
}

func TestUpsertAssistantTwicePatchesInstead(t *testing.T) {
	svc, provider, _, _ := setupProvisioner(t)
	ctx := context.Background()

	req := domain.AssistantSetupRequest{UserID: "user-1"}
	_, err := svc.UpsertAssistant(ctx, req)
	require.NoError(t, err)
	_, err = svc.UpsertAssistant(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.createCalls)
	assert.Equal(t, 1, provider.updateCalls)
}

func TestProvisioningFailureKeepsProfile(t *testing.T) {
	svc, provider, directory, profiles := setupProvisioner(t)
	provider.failAssistants = true
	ctx := context.Background()

	_, err := svc.UpsertAssistant(ctx, domain.AssistantSetupRequest{
		UserID:       "user-1",
		BusinessData: domain.BusinessData{BusinessName: "Bright Smiles Dental"},
	})
	assert.ErrorIs(t, err, domain.ErrProvisioning)

	// The profile survives so the next attempt reuses the saved data.
	profile, err := profiles.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Bright Smiles Dental", profile.BusinessData.BusinessName)

	assistant, err := directory.GetAssistantByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, assistant)
}

func TestSetupPhoneNumberRequiresAssistant(t *testing.T) {
	svc, _, _, _ := setupProvisioner(t)

	_, err := svc.SetupPhoneNumber(context.Background(), domain.PhoneSetupRequest{
		UserID: "user-1",
		Number: "+15551230001",
	})
	assert.ErrorIs(t, err, domain.ErrNoAssistant)
}

func TestSetupPhoneNumberImportsNewNumber(t *testing.T) {
	svc, provider, directory, _ := setupProvisioner(t)
	ctx := context.Background()

	_, err := svc.UpsertAssistant(ctx, domain.AssistantSetupRequest{UserID: "user-1"})
	require.NoError(t, err)

	record, err := svc.SetupPhoneNumber(ctx, domain.PhoneSetupRequest{UserID: "user-1", Number: "+15551230001"})
	require.NoError(t, err)
	assert.Equal(t, "phone-remote-1", record.RemotePhoneID)
	assert.Equal(t, 1, provider.phoneCreates)

	userID, err := directory.ResolveUserByNumber(ctx, "+15551230001")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSetupPhoneNumberIsIdempotent(t *testing.T) {
	svc, provider, _, _ := setupProvisioner(t)
	ctx := context.Background()

	_, err := svc.UpsertAssistant(ctx, domain.AssistantSetupRequest{UserID: "user-1"})
	require.NoError(t, err)

	req := domain.PhoneSetupRequest{UserID: "user-1", Number: "+15551230001"}
	_, err = svc.SetupPhoneNumber(ctx, req)
	require.NoError(t, err)

	// Re-running the same setup finds the number already bound and makes
	// no further provider writes.
	_, err = svc.SetupPhoneNumber(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.phoneCreates)
	assert.Equal(t, 0, provider.phonePatches)
}

func TestSetupPhoneNumberRebindsForeignNumber(t *testing.T) {
	svc, provider, _, _ := setupProvisioner(t)
	ctx := context.Background()

	_, err := svc.UpsertAssistant(ctx, domain.AssistantSetupRequest{UserID: "user-1"})
	require.NoError(t, err)

	provider.phoneNumbers = append(provider.phoneNumbers, vapi.PhoneNumberResource{
		ID: "phone-remote-9", Number: "+15551230001", AssistantID: "someone-else",
	})

	record, err := svc.SetupPhoneNumber(ctx, domain.PhoneSetupRequest{UserID: "user-1", Number: "+15551230001"})
	require.NoError(t, err)
	assert.Equal(t, "phone-remote-9", record.RemotePhoneID)
	assert.Equal(t, 0, provider.phoneCreates)
	assert.Equal(t, 1, provider.phonePatches)
}
