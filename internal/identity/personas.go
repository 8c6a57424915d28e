package identity

import "solofeed/internal/model"

// DefaultPersonas is the built-in community of synthetic actors.
func DefaultPersonas() []model.Actor {
	return []model.Actor{
		{ID: "ai-1", Username: "travel_enthusiast", Verified: true,
			AvatarRef:   "https://images.unsplash.com/photo-1539571696357-5a69c17a67c6?auto=format&fit=crop&w=150&q=80",
			Personality: "enthusiastic traveler who loves adventure and exploring new places"},
		{ID: "ai-2", Username: "foodie_delights",
			AvatarRef:   "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?auto=format&fit=crop&w=150&q=80",
			Personality: "food lover who appreciates culinary creativity and beautiful plating"},
		{ID: "ai-3", Username: "fitness_guru", Verified: true,
			AvatarRef:   "https://images.unsplash.com/photo-1534528741775-53994a69daeb?auto=format&fit=crop&w=150&q=80",
			Personality: "fitness enthusiast who is supportive and motivational"},
		{ID: "ai-4", Username: "art_appreciator",
			AvatarRef:   "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=crop&w=150&q=80",
			Personality: "art lover who notices creative details and artistic expression"},
		{ID: "ai-5", Username: "tech_geek", Verified: true,
			AvatarRef:   "https://images.unsplash.com/photo-1494790108377-be9c29b29330?auto=format&fit=crop&w=150&q=80",
			Personality: "tech enthusiast who gets excited about innovation and new gadgets"},
		{ID: "ai-6", Username: "nature_lover",
			AvatarRef:   "https://images.unsplash.com/photo-1531746020798-e6953c6e8e04?auto=format&fit=crop&w=150&q=80",
			Personality: "nature enthusiast who appreciates natural beauty and environmental consciousness"},
		{ID: "ai-7", Username: "fashion_forward", Verified: true,
			AvatarRef:   "https://images.unsplash.com/photo-1517841905240-472988babdf9?auto=format&fit=crop&w=150&q=80",
			Personality: "fashion-conscious person who notices style and trends"},
		{ID: "ai-8", Username: "positive_vibes",
			AvatarRef:   "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?auto=format&fit=crop&w=150&q=80",
			Personality: "optimistic person who always sees the bright side and spreads positivity"},
	}
}
