package main

import (
	"mime/multipart"
	"net/http"
	"time"

	"bitbucket.org/sxnics/sxnics_backend/models"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/gin-gonic/gin"
)

// formTime accepts RFC3339 or plain dates; the admin date pickers post both.
func formTime(form *multipart.Form, key string) (time.Time, error) {
	raw := formString(form, key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &models.ParseError{Field: key, Value: raw}
	}
	return t, nil
}

/* artists */

func parseArtistForm(form *multipart.Form) (*models.NewArtist, error) {
	image, err := formFile(form, "image")
	if err != nil {
		return nil, err
	}
	return &models.NewArtist{
		Name:      formString(form, "name"),
		Bio:       formString(form, "bio"),
		Instagram: formString(form, "instagram"),
		X:         formString(form, "x"),
		Image:     image,
	}, nil
}

func listArtistsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		artists, err := models.GetArtists(c.Request.Context())
		if err != nil {
			respondError(c, "Artist", "listArtistsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"artists": artists})
	}
}

func getArtistHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		artist, err := models.GetArtist(c.Request.Context(), id)
		if err != nil {
			respondError(c, "Artist", "getArtistHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"artist": artist})
	}
}

func createArtistHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseArtistForm(form)
		if err != nil {
			respondError(c, "Artist", "createArtistHandler", err)
			return
		}
		artist, err := models.CreateArtist(c.Request.Context(), storage, input)
		if err != nil {
			respondError(c, "Artist", "createArtistHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"artist": artist})
	}
}

func editArtistHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseArtistForm(form)
		if err != nil {
			respondError(c, "Artist", "editArtistHandler", err)
			return
		}
		artist, err := models.EditArtist(c.Request.Context(), storage, id, input)
		if err != nil {
			respondError(c, "Artist", "editArtistHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"artist": artist})
	}
}

func deleteArtistHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteArtist(c.Request.Context(), storage, id); err != nil {
			respondError(c, "Artist", "deleteArtistHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

/* episodes */

func parseEpisodeForm(form *multipart.Form) (*models.NewEpisode, error) {
	image, err := formFile(form, "image")
	if err != nil {
		return nil, err
	}
	audio, err := formFile(form, "audio")
	if err != nil {
		return nil, err
	}
	return &models.NewEpisode{
		Name:        formString(form, "name"),
		Artist:      formString(form, "artist"),
		Description: formString(form, "description"),
		Image:       image,
		Audio:       audio,
	}, nil
}

func listEpisodesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		episodes, err := models.GetEpisodes(c.Request.Context())
		if err != nil {
			respondError(c, "Episode", "listEpisodesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episodes": episodes})
	}
}

func getEpisodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		episode, err := models.GetEpisode(c.Request.Context(), id)
		if err != nil {
			respondError(c, "Episode", "getEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episode": episode})
	}
}

func createEpisodeHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseEpisodeForm(form)
		if err != nil {
			respondError(c, "Episode", "createEpisodeHandler", err)
			return
		}
		episode, err := models.CreateEpisode(c.Request.Context(), storage, input)
		if err != nil {
			respondError(c, "Episode", "createEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episode": episode})
	}
}

func editEpisodeHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseEpisodeForm(form)
		if err != nil {
			respondError(c, "Episode", "editEpisodeHandler", err)
			return
		}
		episode, err := models.EditEpisode(c.Request.Context(), storage, id, input)
		if err != nil {
			respondError(c, "Episode", "editEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episode": episode})
	}
}

func deleteEpisodeHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteEpisode(c.Request.Context(), storage, id); err != nil {
			respondError(c, "Episode", "deleteEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

/* releases */

func parseReleaseForm(form *multipart.Form) (*models.NewRelease, error) {
	image, err := formFile(form, "image")
	if err != nil {
		return nil, err
	}
	releaseDate, err := formTime(form, "release_date")
	if err != nil {
		return nil, err
	}
	return &models.NewRelease{
		Name:         formString(form, "name"),
		Artist:       formString(form, "artist"),
		About:        formString(form, "about"),
		PurchaseLink: formString(form, "purchase_link"),
		Type:         models.ReleaseType(formString(form, "type")),
		Tag:          formString(form, "tag"),
		ReleaseDate:  releaseDate,
		Image:        image,
	}, nil
}

func listReleasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		releases, err := models.GetReleases(c.Request.Context())
		if err != nil {
			respondError(c, "Release", "listReleasesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"releases": releases})
	}
}

func getReleaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		release, err := models.GetRelease(c.Request.Context(), id)
		if err != nil {
			respondError(c, "Release", "getReleaseHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"release": release})
	}
}

func createReleaseHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseReleaseForm(form)
		if err != nil {
			respondError(c, "Release", "createReleaseHandler", err)
			return
		}
		release, err := models.CreateRelease(c.Request.Context(), storage, input)
		if err != nil {
			respondError(c, "Release", "createReleaseHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"release": release})
	}
}

func editReleaseHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseReleaseForm(form)
		if err != nil {
			respondError(c, "Release", "editReleaseHandler", err)
			return
		}
		release, err := models.EditRelease(c.Request.Context(), storage, id, input)
		if err != nil {
			respondError(c, "Release", "editReleaseHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"release": release})
	}
}

func deleteReleaseHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteRelease(c.Request.Context(), storage, id); err != nil {
			respondError(c, "Release", "deleteReleaseHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

/* events */

func parseEventForm(form *multipart.Form) (*models.NewEvent, error) {
	cover, err := formFile(form, "cover")
	if err != nil {
		return nil, err
	}
	eventDate, err := formTime(form, "event_date")
	if err != nil {
		return nil, err
	}
	return &models.NewEvent{
		Name:       formString(form, "name"),
		EventBy:    formString(form, "event_by"),
		Location:   formString(form, "location"),
		About:      formString(form, "about"),
		TicketLink: formString(form, "ticket_link"),
		EventDate:  eventDate,
		Cover:      cover,
	}, nil
}

func listEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := models.GetEvents(c.Request.Context())
		if err != nil {
			respondError(c, "Event", "listEventsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

func getEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		event, err := models.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, "Event", "getEventHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": event})
	}
}

func createEventHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseEventForm(form)
		if err != nil {
			respondError(c, "Event", "createEventHandler", err)
			return
		}
		event, err := models.CreateEvent(c.Request.Context(), storage, input)
		if err != nil {
			respondError(c, "Event", "createEventHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": event})
	}
}

func editEventHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseEventForm(form)
		if err != nil {
			respondError(c, "Event", "editEventHandler", err)
			return
		}
		event, err := models.EditEvent(c.Request.Context(), storage, id, input)
		if err != nil {
			respondError(c, "Event", "editEventHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": event})
	}
}

func deleteEventHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteEvent(c.Request.Context(), storage, id); err != nil {
			respondError(c, "Event", "deleteEventHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

/* top picks */

func parseTopPickForm(form *multipart.Form) (*models.NewTopPick, error) {
	image, err := formFile(form, "image")
	if err != nil {
		return nil, err
	}
	return &models.NewTopPick{
		Name:         formString(form, "name"),
		Artist:       formString(form, "artist"),
		PurchaseLink: formString(form, "purchase_link"),
		Tag:          formString(form, "tag"),
		Image:        image,
	}, nil
}

func listTopPicksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		picks, err := models.GetTopPicks(c.Request.Context())
		if err != nil {
			respondError(c, "TopPick", "listTopPicksHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"top_picks": picks})
	}
}

func getTopPickHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		pick, err := models.GetTopPick(c.Request.Context(), id)
		if err != nil {
			respondError(c, "TopPick", "getTopPickHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"top_pick": pick})
	}
}

func createTopPickHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseTopPickForm(form)
		if err != nil {
			respondError(c, "TopPick", "createTopPickHandler", err)
			return
		}
		pick, err := models.CreateTopPick(c.Request.Context(), storage, input)
		if err != nil {
			respondError(c, "TopPick", "createTopPickHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"top_pick": pick})
	}
}

func editTopPickHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseTopPickForm(form)
		if err != nil {
			respondError(c, "TopPick", "editTopPickHandler", err)
			return
		}
		pick, err := models.EditTopPick(c.Request.Context(), storage, id, input)
		if err != nil {
			respondError(c, "TopPick", "editTopPickHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"top_pick": pick})
	}
}

func deleteTopPickHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteTopPick(c.Request.Context(), storage, id); err != nil {
			respondError(c, "TopPick", "deleteTopPickHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

/* video episodes */

func parseVideoEpisodeForm(form *multipart.Form) (*models.NewVideoEpisode, error) {
	image, err := formFile(form, "image")
	if err != nil {
		return nil, err
	}
	return &models.NewVideoEpisode{
		Name:        formString(form, "name"),
		Artist:      formString(form, "artist"),
		Description: formString(form, "description"),
		Tag:         formString(form, "tag"),
		VideoUrl:    formString(form, "video_url"),
		Image:       image,
	}, nil
}

func listVideoEpisodesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		episodes, err := models.GetVideoEpisodes(c.Request.Context())
		if err != nil {
			respondError(c, "VideoEpisode", "listVideoEpisodesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episodes": episodes})
	}
}

func getVideoEpisodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		episode, err := models.GetVideoEpisode(c.Request.Context(), id)
		if err != nil {
			respondError(c, "VideoEpisode", "getVideoEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episode": episode})
	}
}

func createVideoEpisodeHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseVideoEpisodeForm(form)
		if err != nil {
			respondError(c, "VideoEpisode", "createVideoEpisodeHandler", err)
			return
		}
		episode, err := models.CreateVideoEpisode(c.Request.Context(), storage, input)
		if err != nil {
			respondError(c, "VideoEpisode", "createVideoEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episode": episode})
	}
}

func editVideoEpisodeHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		form, ok := requestForm(c)
		if !ok {
			return
		}
		input, err := parseVideoEpisodeForm(form)
		if err != nil {
			respondError(c, "VideoEpisode", "editVideoEpisodeHandler", err)
			return
		}
		episode, err := models.EditVideoEpisode(c.Request.Context(), storage, id, input)
		if err != nil {
			respondError(c, "VideoEpisode", "editVideoEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episode": episode})
	}
}

func deleteVideoEpisodeHandler(storage utils.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteVideoEpisode(c.Request.Context(), storage, id); err != nil {
			respondError(c, "VideoEpisode", "deleteVideoEpisodeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

// listMergedEpisodesHandler serves the public feed: audio and video episodes
// in one list, newest first.
func listMergedEpisodesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		episodes, err := models.GetMergedEpisodes(c.Request.Context())
		if err != nil {
			respondError(c, "VideoEpisode", "listMergedEpisodesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"episodes": episodes})
	}
}
