package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Infinite-Loop-Club/club-site-api/internal/handlers"
	"github.com/Infinite-Loop-Club/club-site-api/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.Cors(s.cfg.AllowedOrigins))
	r.Use(middlewares.RateLimit)
	r.Use(middlewares.Instrument)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.registerMemberRoutes(r)
	s.registerPostRoutes(r)
	s.registerVoteRoutes(r)

	return r
}

func (s *Server) registerMemberRoutes(r *mux.Router) {
	mh := handlers.NewMemberHandler(s.memberService)
	adminOnly := middlewares.AdminOnly(s.cfg.AdminTokenHash)

	r.HandleFunc("/api/members", mh.Register).Methods("POST", "OPTIONS")
	r.Handle("/api/members", adminOnly(http.HandlerFunc(mh.GetMembers))).Methods("GET", "OPTIONS")
	r.Handle("/api/members/export", adminOnly(http.HandlerFunc(mh.ExportMembers))).Methods("GET", "OPTIONS")
	r.Handle("/api/members/id/{id}", adminOnly(http.HandlerFunc(mh.GetMemberByID))).Methods("GET", "OPTIONS")
	r.Handle("/api/members/reg/{registerNumber}", adminOnly(http.HandlerFunc(mh.GetMemberByRegisterNumber))).Methods("GET", "OPTIONS")
	r.Handle("/api/members/email/{email}", adminOnly(http.HandlerFunc(mh.GetMemberByEmail))).Methods("GET", "OPTIONS")
	r.Handle("/api/members/{id}/department", adminOnly(http.HandlerFunc(mh.CorrectDepartment))).Methods("PATCH", "OPTIONS")
}

func (s *Server) registerPostRoutes(r *mux.Router) {
	ph := handlers.NewPostHandler(s.postService)
	adminOnly := middlewares.AdminOnly(s.cfg.AdminTokenHash)

	r.HandleFunc("/api/posts", ph.CreatePost).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/posts", ph.GetPosts).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/posts/{id}", ph.GetPostByID).Methods("GET", "OPTIONS")
	r.Handle("/api/posts/{id}", adminOnly(http.HandlerFunc(ph.DeletePost))).Methods("DELETE", "OPTIONS")
}

func (s *Server) registerVoteRoutes(r *mux.Router) {
	vh := handlers.NewVoteHandler(s.voteService)

	r.HandleFunc("/api/vote/send-otp", vh.SendOTP).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/vote/verify-otp", vh.VerifyOTP).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/vote/make", vh.MakeVote).Methods("POST", "OPTIONS")
}
