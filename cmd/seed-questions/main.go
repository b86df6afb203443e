package main

import (
	"context"
	"flag"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/database"
	"github.com/akadimia/academy-backend/internal/logger"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
)

// seed-questions loads a starter question bank so the entry exam can run.
// Existing questions are kept; pass -reset to wipe the bank first.
func main() {
	var reset bool
	flag.BoolVar(&reset, "reset", false, "Delete all existing questions before seeding")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "console")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	if reset {
		existing, err := questionRepo.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list existing questions")
		}
		for _, q := range existing {
			if err := questionRepo.Delete(ctx, q.ID); err != nil {
				log.Fatal().Err(err).Int("id", q.ID).Msg("Failed to delete question")
			}
		}
		log.Info().Int("deleted", len(existing)).Msg("Question bank cleared")
	}

	created := 0
	for _, q := range starterQuestions {
		question := q
		if err := questionRepo.Create(ctx, &question); err != nil {
			log.Fatal().Err(err).Str("text", question.Text).Msg("Failed to insert question")
		}
		created++
	}

	total, err := questionRepo.Count(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count questions")
	}

	log.Info().
		Int("created", created).
		Int("total", total).
		Msg("Question bank seeded")
}

// starterQuestions covers basic procedure, radio discipline and conduct.
var starterQuestions = []model.Question{
	{
		Text:         "What is the first thing you do when arriving at an active scene?",
		Options:      [4]string{"Draw your weapon", "Assess the situation and report in", "Detain everyone present", "Leave your vehicle running"},
		CorrectIndex: 1,
	},
	{
		Text:         "A suspect surrenders peacefully. What comes next?",
		Options:      [4]string{"Search, cuff, then read their rights", "Cuff, search, then read their rights", "Read their rights, then release them", "Transport first, paperwork later"},
		CorrectIndex: 1,
	},
	{
		Text:         "Which radio code signals that you need immediate backup?",
		Options:      [4]string{"10-4", "10-13", "10-20", "10-99"},
		CorrectIndex: 1,
	},
	{
		Text:         "When are you permitted to engage in a vehicle pursuit?",
		Options:      [4]string{"Whenever a vehicle flees", "Only with supervisor authorization or active danger to the public", "Never", "Only during daylight hours"},
		CorrectIndex: 1,
	},
	{
		Text:         "A fellow officer uses excessive force. What do you do?",
		Options:      [4]string{"Ignore it, loyalty first", "Report it to your superior", "Join in to back them up", "Confront them publicly on the radio"},
		CorrectIndex: 1,
	},
	{
		Text:         "What does maintaining the chain of custody mean?",
		Options:      [4]string{"Keeping suspects chained during transport", "Documenting who handled evidence and when", "Following your commanding officer at a scene", "Locking the precinct at night"},
		CorrectIndex: 1,
	},
	{
		Text:         "When may you search a vehicle without a warrant?",
		Options:      [4]string{"Any time you stop it", "With probable cause or the driver's consent", "Only if the vehicle is stolen", "Never without a judge present"},
		CorrectIndex: 1,
	},
	{
		Text:         "The correct escalation of force begins with:",
		Options:      [4]string{"Taser", "Verbal commands", "Warning shot", "Baton"},
		CorrectIndex: 1,
	},
	{
		Text:         "You witness a minor traffic violation while responding to a priority call. You should:",
		Options:      [4]string{"Abandon the call and stop the vehicle", "Continue to the priority call and note the plate", "Fire a warning shot", "Call in sick"},
		CorrectIndex: 1,
	},
	{
		Text:         "Who is allowed inside a taped-off crime scene?",
		Options:      [4]string{"Any officer on duty", "Only personnel assigned to the scene", "Press with valid credentials", "Witnesses who saw the incident"},
		CorrectIndex: 1,
	},
	{
		Text:         "What information must every arrest report contain?",
		Options:      [4]string{"Only the suspect's name", "Time, location, charges and officers involved", "The suspect's opinion of the arrest", "A photo of the scene"},
		CorrectIndex: 1,
	},
	{
		Text:         "Your partner is injured during a stop. Your first radio call is:",
		Options:      [4]string{"Requesting EMS with your exact location", "Asking for the day's duty roster", "Reporting the suspect's description", "Requesting a tow truck"},
		CorrectIndex: 0,
	},
	{
		Text:         "A civilian asks for your badge number. You:",
		Options:      [4]string{"Refuse, it is confidential", "Provide it, they are entitled to it", "Ask why they want it first", "Report them for harassment"},
		CorrectIndex: 1,
	},
	{
		Text:         "When transporting a detainee, you must:",
		Options:      [4]string{"Leave them uncuffed if they cooperate", "Search them and secure them with a seatbelt", "Let them ride in the front seat", "Stop for food if they ask"},
		CorrectIndex: 1,
	},
	{
		Text:         "Use of lethal force is justified only when:",
		Options:      [4]string{"A suspect flees on foot", "There is imminent threat to life", "A suspect insults an officer", "Property is being damaged"},
		CorrectIndex: 1,
	},
	{
		Text:         "What does 10-4 mean over the radio?",
		Options:      [4]string{"Officer down", "Message received", "Request backup", "Code silence"},
		CorrectIndex: 1,
	},
	{
		Text:         "Off duty, you witness a robbery in progress. You should:",
		Options:      [4]string{"Intervene alone immediately", "Call it in and observe from a safe position", "Ignore it, you are off the clock", "Chase the suspect in your own car at any cost"},
		CorrectIndex: 1,
	},
	{
		Text:         "How should you address a hostile but unarmed crowd?",
		Options:      [4]string{"Disperse it with force at once", "Keep distance, communicate and request support", "Arrest the loudest person", "Leave the scene"},
		CorrectIndex: 1,
	},
	{
		Text:         "A traffic stop becomes a felony stop when:",
		Options:      [4]string{"The driver is rude", "The vehicle or occupants are linked to a serious crime", "The stop takes over ten minutes", "More than one officer is present"},
		CorrectIndex: 1,
	},
	{
		Text:         "Evidence found during an illegal search is:",
		Options:      [4]string{"Admissible if it proves guilt", "Inadmissible in court", "Admissible with supervisor approval", "Kept as leverage"},
		CorrectIndex: 1,
	},
	{
		Text:         "Before going on duty you must always:",
		Options:      [4]string{"Fuel your cruiser and check your equipment", "Post on social media", "Skip roll call if busy", "Borrow a colleague's radio"},
		CorrectIndex: 0,
	},
	{
		Text:         "A detainee requests medical attention. You:",
		Options:      [4]string{"Decide yourself whether they need it", "Request EMS without delay", "Tell them to wait until booking", "Ignore it unless they collapse"},
		CorrectIndex: 1,
	},
	{
		Text:         "Which of the following breaks radio discipline?",
		Options:      [4]string{"Using clear, short transmissions", "Chatting about personal matters on the main channel", "Acknowledging dispatch", "Reporting your position"},
		CorrectIndex: 1,
	},
	{
		Text:         "What is the purpose of a perimeter during a manhunt?",
		Options:      [4]string{"To give officers a place to rest", "To contain the suspect within a defined area", "To redirect traffic only", "To mark the press area"},
		CorrectIndex: 1,
	},
	{
		Text:         "An order from a superior conflicts with the law. You:",
		Options:      [4]string{"Follow it, orders are orders", "Refuse and report it up the chain", "Follow it but complain later", "Resign on the spot"},
		CorrectIndex: 1,
	},
	{
		Text:         "The priority order at any incident is:",
		Options:      [4]string{"Property, evidence, people", "Life safety, scene security, evidence", "Evidence, life safety, traffic", "Press, public, property"},
		CorrectIndex: 1,
	},
	{
		Text:         "When do you activate lights and sirens?",
		Options:      [4]string{"Whenever traffic is slow", "On authorized emergency responses", "Only at night", "When ending your shift"},
		CorrectIndex: 1,
	},
	{
		Text:         "A witness refuses to give a statement. You:",
		Options:      [4]string{"Detain them until they talk", "Note their refusal and offer contact details", "Threaten them with charges", "Take their phone as evidence"},
		CorrectIndex: 1,
	},
	{
		Text:         "What does officer discretion mean?",
		Options:      [4]string{"Ignoring laws you disagree with", "Reasonable judgment within policy when enforcing the law", "Keeping secrets from your partner", "Choosing your own patrol hours"},
		CorrectIndex: 1,
	},
	{
		Text:         "After discharging your firearm on duty you must:",
		Options:      [4]string{"Reload and continue patrol", "Report it immediately and secure the scene", "Only report it if someone was hit", "Clean the weapon before inspection"},
		CorrectIndex: 1,
	},
}
