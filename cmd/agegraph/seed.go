package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/graphbridge/agegraph/pkg/agtype"
)

var roadCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
	"San Francisco", "Indianapolis", "Seattle", "Denver", "Boston",
	"Portland", "Las Vegas", "Detroit", "Memphis", "Baltimore",
}

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Barbara", "David", "Elizabeth", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
	"Kenneth", "Dorothy", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
}

var personCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia",
	"San Antonio", "San Diego", "Dallas", "San Jose", "Austin", "Jacksonville",
	"Seattle", "Denver", "Boston", "Portland", "Las Vegas", "Detroit",
	"Atlanta", "Miami", "Minneapolis", "Tampa", "Oakland", "Raleigh",
}

var sports = []string{
	"Soccer", "Basketball", "Tennis", "Swimming", "Running",
	"Cycling", "Golf", "Volleyball", "Baseball", "Boxing",
}

var outdoorSports = map[string]bool{
	"Soccer": true, "Running": true, "Cycling": true, "Golf": true,
}

var companies = []string{
	"Tech Innovations Inc", "Global Solutions Corp", "Digital Dynamics LLC",
	"Enterprise Systems Group", "Cloud Services International", "Data Analytics Pro",
	"Software Development Hub", "Cyber Security Experts", "AI Research Labs",
	"Mobile Technologies United",
}

var industries = []string{"Technology", "Finance", "Healthcare", "Retail", "Manufacturing"}
var positions = []string{"Engineer", "Manager", "Analyst", "Designer", "Developer", "Consultant"}
var skillLevels = []string{"Beginner", "Intermediate", "Advanced", "Expert"}

func runSeedSocial(cmd *cobra.Command, args []string) error {
	_, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	recreate, _ := cmd.Flags().GetBool("recreate")
	ctx := cmd.Context()
	sess, err := prepareSeedGraph(ctx, store, "social_network", recreate)
	if err != nil {
		return err
	}

	fmt.Println("Creating 100 Person nodes...")
	personIDs := make([]int64, 0, 100)
	for i := 0; i < 100; i++ {
		name := firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
		node, err := sess.CreateNode(ctx, "Person", map[string]agtype.Value{
			"name": agtype.StringValue(name),
			"age":  agtype.IntValue(int64(22 + rand.Intn(44))),
			"city": agtype.StringValue(personCities[rand.Intn(len(personCities))]),
		})
		if err != nil {
			return err
		}
		personIDs = append(personIDs, node.ID)
	}

	fmt.Println("Creating 10 Sport nodes...")
	sportIDs := make([]int64, 0, len(sports))
	for _, sport := range sports {
		category := "Indoor"
		if outdoorSports[sport] {
			category = "Outdoor"
		}
		node, err := sess.CreateNode(ctx, "Sport", map[string]agtype.Value{
			"name":     agtype.StringValue(sport),
			"category": agtype.StringValue(category),
		})
		if err != nil {
			return err
		}
		sportIDs = append(sportIDs, node.ID)
	}

	fmt.Println("Creating 10 Company nodes...")
	companyIDs := make([]int64, 0, len(companies))
	for _, company := range companies {
		node, err := sess.CreateNode(ctx, "Company", map[string]agtype.Value{
			"name":      agtype.StringValue(company),
			"employees": agtype.IntValue(int64(50 + rand.Intn(451))),
			"industry":  agtype.StringValue(industries[rand.Intn(len(industries))]),
		})
		if err != nil {
			return err
		}
		companyIDs = append(companyIDs, node.ID)
	}

	fmt.Println("Creating Person -> Sport relationships...")
	sportEdges := 0
	for _, personID := range personIDs {
		for _, sportID := range sampleIDs(sportIDs, 1+rand.Intn(3)) {
			_, err := sess.CreateEdge(ctx, personID, sportID, "PRACTICE", map[string]agtype.Value{
				"years":       agtype.IntValue(int64(1 + rand.Intn(20))),
				"skill_level": agtype.StringValue(skillLevels[rand.Intn(len(skillLevels))]),
			})
			if err != nil {
				return err
			}
			sportEdges++
		}
		for _, sportID := range sampleIDs(sportIDs, 1+rand.Intn(4)) {
			_, err := sess.CreateEdge(ctx, personID, sportID, "LIKE", map[string]agtype.Value{
				"interest_level": agtype.IntValue(int64(1 + rand.Intn(10))),
			})
			if err != nil {
				return err
			}
			sportEdges++
		}
	}

	fmt.Println("Creating Person -> Company relationships...")
	employer := make(map[int64]int64, len(personIDs))
	for _, personID := range personIDs {
		companyID := companyIDs[rand.Intn(len(companyIDs))]
		_, err := sess.CreateEdge(ctx, personID, companyID, "WORKS_AT", map[string]agtype.Value{
			"position": agtype.StringValue(positions[rand.Intn(len(positions))]),
			"years":    agtype.IntValue(int64(1 + rand.Intn(15))),
			"salary":   agtype.IntValue(int64(50000 + rand.Intn(100001))),
		})
		if err != nil {
			return err
		}
		employer[personID] = companyID
	}

	fmt.Println("Creating FRIENDS relationships...")
	friendEdges := 0
	for _, personID := range personIDs {
		for _, friendID := range samplePeers(personIDs, personID, 3+rand.Intn(6)) {
			_, err := sess.CreateEdge(ctx, personID, friendID, "FRIENDS", map[string]agtype.Value{
				"since":     agtype.IntValue(int64(2010 + rand.Intn(15))),
				"closeness": agtype.IntValue(int64(1 + rand.Intn(10))),
			})
			if err != nil {
				return err
			}
			friendEdges++
		}
	}

	fmt.Println("Creating COWORKER relationships...")
	byCompany := map[int64][]int64{}
	for personID, companyID := range employer {
		byCompany[companyID] = append(byCompany[companyID], personID)
	}
	coworkerEdges := 0
	for _, employees := range byCompany {
		if len(employees) < 2 {
			continue
		}
		for _, personID := range employees {
			for _, coworkerID := range samplePeers(employees, personID, 2+rand.Intn(4)) {
				_, err := sess.CreateEdge(ctx, personID, coworkerID, "COWORKER", map[string]agtype.Value{
					"years_together": agtype.IntValue(int64(1 + rand.Intn(10))),
				})
				if err != nil {
					return err
				}
				coworkerEdges++
			}
		}
	}

	fmt.Printf("Done: %d persons, %d sports, %d companies, %d sport edges, %d friend edges, %d coworker edges.\n",
		len(personIDs), len(sportIDs), len(companyIDs), sportEdges, friendEdges, coworkerEdges)
	return nil
}

func runSeedRoads(cmd *cobra.Command, args []string) error {
	_, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	recreate, _ := cmd.Flags().GetBool("recreate")
	ctx := cmd.Context()
	sess, err := prepareSeedGraph(ctx, store, "road", recreate)
	if err != nil {
		return err
	}

	fmt.Printf("Creating %d city nodes...\n", len(roadCities))
	cityIDs := make(map[string]int64, len(roadCities))
	for _, city := range roadCities {
		node, err := sess.CreateNode(ctx, "City", map[string]agtype.Value{
			"name":       agtype.StringValue(city),
			"population": agtype.IntValue(int64(50000 + rand.Intn(4950001))),
			"state":      agtype.StringValue("USA"),
		})
		if err != nil {
			return err
		}
		cityIDs[city] = node.ID
	}

	fmt.Println("Creating road connections...")
	roads := 0
	for _, city := range roadCities {
		for _, target := range sampleCities(roadCities, city, 2+rand.Intn(3)) {
			label := "Normal"
			km := 20 + rand.Intn(181)
			speed := 40 + rand.Float64()*20
			if rand.Intn(2) == 0 {
				label = "Highway"
				km = 50 + rand.Intn(451)
				speed = 80 + rand.Float64()*40
			}
			hours := float64(km) / speed

			_, err := sess.CreateEdge(ctx, cityIDs[city], cityIDs[target], label, map[string]agtype.Value{
				"km":   agtype.IntValue(int64(km)),
				"time": agtype.FloatValue(float64(int(hours*10)) / 10),
				"from": agtype.StringValue(city),
				"to":   agtype.StringValue(target),
			})
			if err != nil {
				return err
			}
			roads++
		}
	}

	fmt.Printf("Done: %d cities, %d roads.\n", len(cityIDs), roads)
	return nil
}

// sampleIDs picks up to n distinct ids.
func sampleIDs(ids []int64, n int) []int64 {
	if n > len(ids) {
		n = len(ids)
	}
	perm := rand.Perm(len(ids))
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = ids[perm[i]]
	}
	return out
}

// samplePeers picks up to n distinct ids excluding self.
func samplePeers(ids []int64, self int64, n int) []int64 {
	peers := make([]int64, 0, len(ids)-1)
	for _, id := range ids {
		if id != self {
			peers = append(peers, id)
		}
	}
	return sampleIDs(peers, n)
}

func sampleCities(cities []string, self string, n int) []string {
	peers := make([]string, 0, len(cities)-1)
	for _, c := range cities {
		if c != self {
			peers = append(peers, c)
		}
	}
	if n > len(peers) {
		n = len(peers)
	}
	perm := rand.Perm(len(peers))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = peers[perm[i]]
	}
	return out
}
