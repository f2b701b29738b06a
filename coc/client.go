package coc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.clashofclans.com/v1"

var (
	ErrInvalidTag  = errors.New("malformed player or clan tag")
	ErrNotFound    = errors.New("tag not found")
	ErrMaintenance = errors.New("clash of clans API maintenance break")
)

// Client talks to the Clash of Clans REST API. Lookups go through TTL
// caches so interview flows do not hammer the API for the same tag.
type Client struct {
	apiToken string
	baseURL  string
	http     *http.Client
	Logger   *zap.SugaredLogger

	Players *Cache[*Player]
	Clans   *Cache[*Clan]
}

func NewClient(apiToken string, baseURL string, logger *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiToken: apiToken,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
		Players:  NewCache[*Player](48 * time.Hour),
		Clans:    NewCache[*Clan](48 * time.Hour),
	}
}

func (client *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+client.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusServiceUnavailable:
		return ErrMaintenance
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("coc API status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetPlayer fetches a player profile by tag, cached.
func (client *Client) GetPlayer(ctx context.Context, tag string) (*Player, error) {
	tag = NormalizeTag(tag)
	if !ValidTag(tag) {
		return nil, ErrInvalidTag
	}
	if player, ok := client.Players.Get(tag); ok {
		return player, nil
	}
	client.Logger.Debugf("Start fetching player %s", tag)
	var player Player
	err := client.get(ctx, "/players/"+url.PathEscape(tag), &player)
	if err != nil {
		return nil, err
	}
	client.Players.Put(tag, &player)
	client.Logger.Debugf("Finish fetching player %s", tag)
	return &player, nil
}

// GetClan fetches a clan profile by tag, cached.
func (client *Client) GetClan(ctx context.Context, tag string) (*Clan, error) {
	tag = NormalizeTag(tag)
	if !ValidTag(tag) {
		return nil, ErrInvalidTag
	}
	if clan, ok := client.Clans.Get(tag); ok {
		return clan, nil
	}
	client.Logger.Debugf("Start fetching clan %s", tag)
	var clan Clan
	err := client.get(ctx, "/clans/"+url.PathEscape(tag), &clan)
	if err != nil {
		return nil, err
	}
	client.Clans.Put(tag, &clan)
	client.Logger.Debugf("Finish fetching clan %s", tag)
	return &clan, nil
}

// RefreshPlayers re-fetches every cached player. Called on a timer; a
// maintenance break aborts the pass, anything else skips the entry.
func (client *Client) RefreshPlayers(ctx context.Context) error {
	keys := client.Players.Keys()
	client.Logger.Debugf("Start refreshing %d cached players", len(keys))
	for _, tag := range keys {
		var player Player
		err := client.get(ctx, "/players/"+url.PathEscape(tag), &player)
		if errors.Is(err, ErrMaintenance) {
			return err
		}
		if err != nil {
			client.Logger.Infof("Failed to refresh player %s: %s", tag, err.Error())
			client.Players.Delete(tag)
			continue
		}
		client.Players.Put(tag, &player)
	}
	client.Logger.Debugf("Finish refreshing %d cached players", len(keys))
	return nil
}

// ClearCaches drops both caches entirely.
func (client *Client) ClearCaches() {
	client.Logger.Infof("Clearing caches (%d players, %d clans)", client.Players.Len(), client.Clans.Len())
	client.Players.Clear()
	client.Clans.Clear()
}

// IsImageURL checks the content type of a proof URL without downloading
// the body.
func (client *Client) IsImageURL(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := client.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	switch resp.Header.Get("Content-Type") {
	case "image/png", "image/jpeg", "image/jpg":
		return true
	}
	return false
}
