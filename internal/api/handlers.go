package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"solofeed/internal/analytics"
	"solofeed/internal/engine"
	"solofeed/internal/model"
	"solofeed/internal/util"
)

// PostView decorates a post with display helpers.
type PostView struct {
	model.Post
	Ago      string         `json:"ago"`
	Segments []util.Segment `json:"captionSegments"`
}

func (s *Server) view(p model.Post) PostView {
	return PostView{Post: p, Ago: util.RelativeTime(p.CreatedAt, s.clock.Now()), Segments: util.ParseCaption(p.Caption)}
}

type createPostRequest struct {
	Images   []string `json:"images"`
	Caption  string   `json:"caption"`
	Location string   `json:"location,omitempty"`
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := model.ValidateNewPost(req.Images, req.Caption); err != nil {
		writeError(w, err)
		return
	}
	p := s.feed.CreatePost(req.Images, req.Caption, util.NormalizeWhitespace(req.Location))
	writeJSON(w, http.StatusCreated, s.view(p))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts := s.feed.Posts()
	out := make([]PostView, len(posts))
	for i, p := range posts {
		out[i] = s.view(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.feed.Post(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(p))
}

// respondPost answers with the post's latest state after a toggle.
func (s *Server) respondPost(w http.ResponseWriter, id string, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	s.writePost(w, id)
}

func (s *Server) writePost(w http.ResponseWriter, id string) {
	p, err := s.feed.Post(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(p))
}

func (s *Server) likePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	_, err := s.feed.Like(id, "")
	s.respondPost(w, id, err)
}

func (s *Server) unlikePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	_, err := s.feed.Unlike(id)
	s.respondPost(w, id, err)
}

func (s *Server) savePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.respondPost(w, id, s.feed.Save(id))
}

func (s *Server) unsavePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.respondPost(w, id, s.feed.Unsave(id))
}

func (s *Server) postLikers(w http.ResponseWriter, r *http.Request) {
	actors, err := s.feed.LikedBy(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actors)
}

type commentRequest struct {
	Text string `json:"text"`
}

// addComment posts a comment as the current user and opens its reply thread.
func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req commentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.feed.AddComment(id, req.Text, "")
	if err != nil {
		writeError(w, err)
		return
	}
	s.engine.SimulateThread(id, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) likeComment(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	_, err := s.feed.LikeComment(v["id"], v["cid"], "")
	s.respondPost(w, v["id"], err)
}

func (s *Server) unlikeComment(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	_, err := s.feed.UnlikeComment(v["id"], v["cid"], "")
	s.respondPost(w, v["id"], err)
}

// openThread starts the reply simulation for a synthetic comment shown in an open thread.
func (s *Server) openThread(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	p, err := s.feed.Post(v["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	for _, c := range p.Comments {
		if c.ID == v["cid"] {
			s.engine.SimulateThread(p.ID, c)
			writeJSON(w, http.StatusAccepted, nil)
			return
		}
	}
	writeError(w, fmt.Errorf("comment %s: %w", v["cid"], model.ErrNotFound))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("view")
	if name == "" {
		name = string(engine.ViewFeed)
	}
	v, err := engine.ParseView(name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.engine.Refresh(v)
	writeJSON(w, http.StatusAccepted, nil)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Profile())
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileUpdate
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Username = util.NormalizeWhitespace(req.Username)
	p, err := s.feed.UpdateProfile(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type notificationsResponse struct {
	Unseen        int                  `json:"unseen"`
	Notifications []model.Notification `json:"notifications"`
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notificationsResponse{Unseen: s.feed.UnseenCount(), Notifications: s.feed.Notifications()})
}

func (s *Server) markSeen(w http.ResponseWriter, r *http.Request) {
	s.feed.MarkNotificationsSeen()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) clearNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.ClearNotification(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// StoryView pairs a story collection with its owner.
type StoryView struct {
	model.UserStories
	User      model.Actor `json:"user"`
	HasUnseen bool        `json:"hasUnseen"`
}

func (s *Server) actor(id string) model.Actor {
	if me := s.feed.CurrentUser(); me.ID == id {
		return me
	}
	if a, ok := s.registry.Lookup(id); ok {
		return a
	}
	return model.Actor{ID: id}
}

func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	all := s.stories.All()
	out := make([]StoryView, len(all))
	for i, us := range all {
		out[i] = StoryView{UserStories: us, User: s.actor(us.ActorID), HasUnseen: us.HasUnseen()}
	}
	writeJSON(w, http.StatusOK, out)
}

type storyRequest struct {
	ImageRef string `json:"imageUrl"`
}

func (s *Server) addStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ImageRef == "" {
		writeError(w, model.NewValidationError("imageUrl", "image is required"))
		return
	}
	item := s.stories.AddStory(s.feed.CurrentUser().ID, req.ImageRef)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) markStorySeen(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	s.stories.MarkSeen(v["actor"], v["story"])
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) listActors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

// hourlyActivity buckets the journal over the last ?hours (default 24).
func (s *Server) hourlyActivity(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if q := r.URL.Query().Get("hours"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, model.NewValidationError("hours", "must be a positive integer"))
			return
		}
		hours = n
	}
	if s.events == nil {
		writeJSON(w, http.StatusOK, []analytics.HourBucket{})
		return
	}
	end := s.clock.Now()
	evs, err := s.events.LoadEventsRange(r.Context(), end.Add(-time.Duration(hours)*time.Hour), end.Add(time.Second), "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Hourly(evs))
}
