package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/process"
)

// Health handles GET /health with the number of active participants and
// the memory and CPU usage of the server process.
func (s *Server) Health(c *fiber.Ctx) error {
	participants, err := s.chatService.ListParticipants()
	if err != nil {
		return s.writeError(c, err)
	}
	response := HealthResponse{Status: "ok", Participants: len(participants)}
	if s.self != nil {
		rss, cpu, err := selfStats(s.self)
		if err != nil {
			s.log.Warn("Failed to collect self stats", "error", err)
		} else {
			response.RSS = rss
			response.CPU = cpu
		}
	}
	return c.JSON(response)
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
